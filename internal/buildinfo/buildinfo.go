// Package buildinfo holds version metadata stamped in at link time via
// -ldflags, matching the teacher's cmd/ployzd use of buildinfo.Version
// as the cobra root command's Version field.
package buildinfo

// Version is overridden at build time with
// -ldflags "-X github.com/terminalhub/hub/internal/buildinfo.Version=...".
var Version = "dev"
