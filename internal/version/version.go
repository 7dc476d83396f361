package version

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/subscript/internal/version.Version=v0.3.0".
var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return "subscript " + Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
