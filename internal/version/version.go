// Package version carries the build version, set at link time:
//
//	go build -ldflags "-X cellscope/internal/version.Version=v1.2.0" ./cmd/cellscope
package version

var Version = "dev"
