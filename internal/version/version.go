package version

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Прошиваются при сборке:
//
//	go build -ldflags "-X isogrid-server/internal/version.BuildDate=2026-10-18 -X ...BuildCommit=abc123"
var (
	BuildDate   string // YYYY-MM-DD, UTC
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

const dateLayout = "2006-01-02"

// ErrNoBuildDate - бинарник собран без -ldflags.
var ErrNoBuildDate = errors.New("build date not set")

// Build id 0 - первый день проекта.
var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// VersionInfo - то, что отдает /version.
type VersionInfo struct {
	BuildID    int    `json:"buildId"`
	BuildDate  string `json:"buildDate,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Branch     string `json:"branch,omitempty"`
	CI         string `json:"ci,omitempty"`
	GoVersion  string `json:"goVersion,omitempty"`
	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

func CalculateBuildID() (int, error) {
	return BuildIDFor(BuildDate)
}

// BuildIDFor - номер сборки: сколько полных суток прошло от epoch до date.
func BuildIDFor(date string) (int, error) {
	if date == "" {
		return 0, ErrNoBuildDate
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("build date %q: %w", date, err)
	}
	if day.Before(epoch) {
		return 0, fmt.Errorf("build date %s precedes %s", date, epoch.Format(dateLayout))
	}
	return int(day.Sub(epoch) / (24 * time.Hour)), nil
}

func Info() VersionInfo {
	info := VersionInfo{
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		CI:        BuildCI,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
	}

	if id, err := CalculateBuildID(); err != nil {
		info.Error = err.Error()
	} else {
		info.BuildID, info.Calculated = id, true
	}
	return info
}

// String - строка для логов при старте: "isogrid build 290 (2026-10-18) abc123@main ci=local".
func String() string {
	info := Info()
	var b strings.Builder
	if info.Calculated {
		fmt.Fprintf(&b, "isogrid build %d (%s)", info.BuildID, info.BuildDate)
	} else {
		fmt.Fprintf(&b, "isogrid build unknown (%s)", info.Error)
		return b.String()
	}

	commit, branch, ci := info.Commit, info.Branch, info.CI
	if commit == "" {
		commit = "unknown"
	}
	if branch == "" {
		branch = "unknown"
	}
	if ci == "" {
		ci = "local"
	}
	fmt.Fprintf(&b, " %s@%s ci=%s", commit, branch, ci)
	return b.String()
}
