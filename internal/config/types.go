package config

// Channel kinds understood by the installer.
const (
	KindWinget   = "winget"
	KindDownload = "download"
	KindClone    = "clone"
	KindArchive  = "archive"
)

// Resolver kinds used to discover a download URL.
const (
	ResolverPage          = "page"
	ResolverGitHubRelease = "github-release"
)

// PATH scopes a channel may append to.
const (
	ScopeMachine = "machine"
	ScopeUser    = "user"
)

// Resolver describes how to discover the latest artifact URL.
// - page: fetch URL and match Pattern against the body; Prefix is prepended to the match.
// - github-release: query the latest release of Repo and match Pattern against asset names.
type Resolver struct {
	Kind    string `yaml:"kind"`    // "page" or "github-release"
	URL     string `yaml:"url"`     // landing page to fetch (page)
	Repo    string `yaml:"repo"`    // owner/name on GitHub (github-release)
	Pattern string `yaml:"pattern"` // regexp matched against the page body or asset names
	Prefix  string `yaml:"prefix"`  // prepended to relative page matches, e.g. "https://github.com"
}

// Channel is one installation strategy for a tool. Which fields matter depends on Kind.
type Channel struct {
	Kind string `yaml:"kind"` // winget, download, clone or archive
	Name string `yaml:"name"` // shown in log lines; defaults to Kind

	// winget
	PackageID string `yaml:"package_id"` // exact winget id, e.g. "Git.Git"

	// download, archive
	Resolvers []Resolver `yaml:"resolvers"`
	Args      []string   `yaml:"args"` // extra installer arguments (download)

	// clone
	Repo   string `yaml:"repo"`   // remote URL passed to git clone
	Branch string `yaml:"branch"` // checked out with -b; the remote default when empty

	// clone, archive
	Dest     string `yaml:"dest"`      // clone target, or the directory the archive is unpacked in
	RenameTo string `yaml:"rename_to"` // name given to the archive's top-level directory
	BinDir   string `yaml:"bin_dir"`   // absolute for clone, relative to Dest/RenameTo for archive
	Scope    string `yaml:"scope"`     // PATH scope for BinDir: "machine" or "user" (default)
}

// Tool is an executable the bootstrap must make reachable on PATH.
type Tool struct {
	Name       string    `yaml:"name"`       // display name used in log lines
	Executable string    `yaml:"executable"` // looked up on PATH, without extension
	ManualURL  string    `yaml:"manual_url"` // printed when every channel failed
	Channels   []Channel `yaml:"channels"`   // tried in order until the executable is locatable
}

// Subcommand is a diagnostic invocation of an installed tool.
type Subcommand struct {
	Args      []string `yaml:"args"`       // arguments after the executable
	ManualURL string   `yaml:"manual_url"` // printed when the subcommand fails
}

// Flutter is the primary SDK plus its post-install diagnostics.
type Flutter struct {
	Tool     `yaml:",inline"`
	Licenses Subcommand `yaml:"licenses"` // license acceptance; failure is logged, not fatal
	Doctor   Subcommand `yaml:"doctor"`   // final diagnostics; exit status ignored
}

// Android is the optional secondary toolchain.
type Android struct {
	Tool             `yaml:",inline"`
	Prompt           string   `yaml:"prompt"`             // opt-in question asked before anything is touched
	SDKRoot          string   `yaml:"sdk_root"`           // passed to sdkmanager as --sdk_root
	Packages         []string `yaml:"packages"`           // sdkmanager packages installed after the tools
	PlatformToolsDir string   `yaml:"platform_tools_dir"` // appended to the user PATH after the packages
}

// Config is the full toolchain manifest.
type Config struct {
	WorkDir string  `yaml:"workdir"` // where installers and archives are downloaded
	Git     Tool    `yaml:"git"`     // installed first; Flutter is cloned with it
	Flutter Flutter `yaml:"flutter"` // primary SDK
	Android Android `yaml:"android"` // optional, behind Prompt
}
