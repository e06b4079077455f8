package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/babarot/organizeimg/internal/images"
)

const repository = "https://github.com/babarot/organizeimg"

type Version struct {
	AppName   string
	Version   string
	Revision  string
	BuildDate string
}

// resolved fills in what the linker flags left out from the build info
func (v Version) resolved() Version {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	switch v.Version {
	case "", "unset", "unknown", "develop":
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Revision == "":
			v.Revision = s.Value
		case s.Key == "vcs.time" && v.BuildDate == "":
			v.BuildDate = s.Value
		}
	}
	return v
}

// Print renders the --version banner
func (v Version) Print() string {
	v = v.resolved()

	var s strings.Builder
	fmt.Fprintf(&s, "%s %s\n", v.AppName, v.Version)
	fmt.Fprintf(&s, "  revision:   %s\n", orNone(v.Revision))
	fmt.Fprintf(&s, "  built:      %s\n", orNone(v.BuildDate))
	fmt.Fprintf(&s, "  platform:   %s/%s (%s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	fmt.Fprintf(&s, "  extensions: %s\n", strings.Join(images.Extensions(), ", "))
	fmt.Fprintf(&s, "\n%s\n", repository)
	return s.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
