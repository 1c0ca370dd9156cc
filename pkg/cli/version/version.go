package version

type Version struct {
	FrameworkVersion   string `json:"framework_version"`
	ApplicationVersion string `json:"application_version"`
}

// VERSION is the harness version. Injected at build time via ldflags.
var VERSION string

// AppVersion may be set by suites embedding the harness so the version
// command reports both the harness and the suite.
var AppVersion string

func Get() (Version, error) {
	return Version{FrameworkVersion: VERSION, ApplicationVersion: AppVersion}, nil
}
