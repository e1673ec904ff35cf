// Command upright converts horizontal source clips into vertical short-form
// videos. Subcommands cover single-clip processing, multi-channel batch runs,
// history inspection, and configuration management.
package main
