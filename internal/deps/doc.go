// Package deps checks the availability of external binaries the pipeline
// shells out to.
package deps
