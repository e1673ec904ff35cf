package overlay_test

import (
	"math/rand"
	"strings"
	"testing"

	"upright/internal/channel"
	"upright/internal/overlay"
)

func testPlanner() *overlay.Planner {
	return overlay.NewPlanner(overlay.Settings{MaxWidthFrac: 0.9, Margin: 48})
}

func testFont() channel.FontSettings {
	return channel.FontSettings{
		Family:  "DejaVuSans-Bold",
		Size:    70,
		Color:   "white",
		Anchor:  channel.AnchorTopCenter,
		MarginY: 320,
	}
}

func TestPlanEmptyTemplate(t *testing.T) {
	plan := testPlanner().Plan("", nil, testFont(), 1080, 1920)
	if !plan.Empty() {
		t.Fatalf("plan = %+v, want empty", plan)
	}
	plan = testPlanner().Plan("   ", nil, testFont(), 1080, 1920)
	if !plan.Empty() {
		t.Fatal("blank template should be empty")
	}
}

func TestPlanFillsHashtagsAndUppercases(t *testing.T) {
	plan := testPlanner().Plan("crazy moment {hashtags}", []string{"#dashcam", "#shorts"}, testFont(), 1080, 1920)
	if plan.Empty() {
		t.Fatal("expected a plan")
	}
	if !strings.Contains(plan.Text, "#DASHCAM #SHORTS") {
		t.Fatalf("text = %q", plan.Text)
	}
	if plan.Text != strings.ToUpper(plan.Text) {
		t.Fatalf("text not uppercased: %q", plan.Text)
	}
}

func TestPlanMasksProfanity(t *testing.T) {
	plan := testPlanner().Plan("what the fuck", nil, testFont(), 1080, 1920)
	if strings.Contains(strings.ToLower(plan.Text), "fuck") {
		t.Fatalf("text = %q", plan.Text)
	}
	if !strings.Contains(plan.Text, "****") {
		t.Fatalf("text = %q", plan.Text)
	}
}

func TestPlanWrapsLongText(t *testing.T) {
	long := strings.Repeat("incredible ", 8)
	plan := testPlanner().Plan(long, nil, testFont(), 1080, 1920)
	if len(plan.Lines) < 2 {
		t.Fatalf("lines = %v, want wrapping", plan.Lines)
	}
	// 0.9 * 1080 = 972 px at 42 px per glyph allows 23 glyphs per line.
	for _, line := range plan.Lines {
		if len(line) > 23 {
			t.Fatalf("line %q exceeds width limit", line)
		}
	}
}

func TestPlanStaysInsideFrame(t *testing.T) {
	for _, anchor := range []string{channel.AnchorTopLeft, channel.AnchorTopCenter, channel.AnchorBottomCenter} {
		font := testFont()
		font.Anchor = anchor
		plan := testPlanner().Plan("caught on camera {hashtags}", []string{"#a"}, font, 1080, 1920)
		if plan.Empty() {
			t.Fatalf("anchor %s: empty plan", anchor)
		}
		box := plan.Box
		if box.X < 48 || box.Y < 48 {
			t.Fatalf("anchor %s: box %+v violates margin", anchor, box)
		}
		if box.X+box.Width > 1080-48+1 {
			t.Fatalf("anchor %s: box %+v exceeds right margin", anchor, box)
		}
		if box.Y+box.Height > 1920-48 {
			t.Fatalf("anchor %s: box %+v exceeds bottom margin", anchor, box)
		}
	}
}

func TestPlanTopCenterUsesFontMargin(t *testing.T) {
	plan := testPlanner().Plan("short", nil, testFont(), 1080, 1920)
	if plan.Box.Y != 320 {
		t.Fatalf("y = %d, want font margin", plan.Box.Y)
	}
	center := plan.Box.X + plan.Box.Width/2
	if center < 500 || center > 580 {
		t.Fatalf("box %+v not horizontally centered", plan.Box)
	}
}

func TestPlanBottomCenterAnchorsFromBottom(t *testing.T) {
	font := testFont()
	font.Anchor = channel.AnchorBottomCenter
	font.MarginY = 200
	plan := testPlanner().Plan("short", nil, font, 1080, 1920)
	want := 1920 - 200 - plan.Box.Height
	if plan.Box.Y != want {
		t.Fatalf("y = %d, want %d", plan.Box.Y, want)
	}
}

func TestChooseTemplate(t *testing.T) {
	if got := overlay.ChooseTemplate(nil, nil); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := overlay.ChooseTemplate([]string{" ", "a"}, nil); got != "a" {
		t.Fatalf("got %q", got)
	}
	templates := []string{"a", "b", "c"}
	first := overlay.ChooseTemplate(templates, rand.New(rand.NewSource(3)))
	second := overlay.ChooseTemplate(templates, rand.New(rand.NewSource(3)))
	if first != second {
		t.Fatalf("%q != %q for same seed", first, second)
	}
}
