// Package channel defines destination channel profiles and their TOML loading.
// A profile carries everything the pipeline needs to render for one channel:
// music policy, overlay text settings, zoom hint, and the daily output limit.
package channel
