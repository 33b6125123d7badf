// features.go - build info banner
//
// Kept from the teacher essentially as-is: an init()-registered list
// of compiled-in feature names printed alongside Go/OS/Arch build
// info. Registrations below name this core's own feature set (wait-
// state accounting, the EGA adapter, sigrok trace export) in place of
// the teacher's audio/video chip list.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import (
	"fmt"
	"runtime"
	"sort"
)

// Version is the build version string, normally set via -ldflags.
var Version = "dev"

// compiledFeatures tracks build-time feature flags via init() registration.
var compiledFeatures []string

func registerFeature(name string) {
	compiledFeatures = append(compiledFeatures, name)
}

func init() {
	registerFeature("wait-states")
	registerFeature("off-rails-detection")
	registerFeature("video:mda")
	registerFeature("video:cga")
	registerFeature("video:ega")
	registerFeature("trace:sigrok")
	registerFeature("debug-script:lua")
}

func printFeatures() {
	fmt.Printf("pcxt %s\n", Version)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
	fmt.Println("Compiled features:")

	sort.Strings(compiledFeatures)
	for _, f := range compiledFeatures {
		fmt.Printf("  %s\n", f)
	}
	if len(compiledFeatures) == 0 {
		fmt.Println("  (none)")
	}
}
