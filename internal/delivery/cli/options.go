package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/pkg/config"
)

// options are the raw flag values shared by the legacy root form and the
// operation subcommands.
type options struct {
	configFile string

	nodes     []string
	nodeFiles []string
	auids     []string
	auidFiles []string

	username       string
	password       string
	legacyUsername string
	legacyPassword string

	poolSize    int
	poolType    string
	processPool bool
	threadPool  bool
	wait        string
	timeout     time.Duration
	insecure    bool
	depth       int

	tableFormat     string
	progress        bool
	keepGoing       bool
	failFast        bool
	skipFailedNodes bool
	metricsFile     string

	verbose   bool
	logLevel  string
	logFormat string
	logFile   string
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configFile, "config", "", "Configuration file (YAML, TOML, JSON or .env)")

	fs.StringArrayVarP(&o.nodes, "node", "n", nil, "Add a node (host:port or URL); repeatable")
	fs.StringArrayVarP(&o.nodeFiles, "nodes", "N", nil, "Add the nodes listed in a file; repeatable")
	fs.StringArrayVarP(&o.auids, "auid", "a", nil, "Add an AUID; repeatable")
	fs.StringArrayVarP(&o.auidFiles, "auids", "A", nil, "Add the AUIDs listed in a file; repeatable")

	fs.StringVarP(&o.username, "username", "U", "", "UI username (prompted for when missing)")
	fs.StringVarP(&o.password, "password", "P", "", "UI password (prompted for when missing)")
	fs.StringVarP(&o.legacyUsername, "legacy-username", "u", "", "UI username")
	fs.StringVarP(&o.legacyPassword, "legacy-password", "p", "", "UI password")
	_ = fs.MarkHidden("legacy-username")
	_ = fs.MarkHidden("legacy-password")
	_ = fs.MarkShorthandDeprecated("legacy-username", "use --username/-U instead")
	_ = fs.MarkShorthandDeprecated("legacy-password", "use --password/-P instead")

	fs.IntVar(&o.poolSize, "pool-size", 0, "Number of concurrent jobs (0 means one per CPU)")
	fs.StringVar(&o.poolType, "pool-type", config.ThreadPool, "Job pool type: thread-pool or process-pool")
	fs.BoolVar(&o.processPool, "process-pool", false, "Use a process pool")
	fs.BoolVar(&o.threadPool, "thread-pool", false, "Use a thread pool")
	_ = fs.MarkDeprecated("process-pool", "use --pool-type=process-pool instead")
	_ = fs.MarkDeprecated("thread-pool", "use --pool-type=thread-pool instead")
	fs.StringVar(&o.wait, "wait", "", "Minimum delay between two requests (duration, or seconds)")
	fs.DurationVar(&o.timeout, "timeout", 0, "Per-request timeout (0 for none)")
	fs.BoolVar(&o.insecure, "insecure-skip-verify", false, "Accept self-signed node certificates")
	fs.IntVarP(&o.depth, "depth", "d", entity.DefaultDepth, "Depth of deep crawls")

	fs.StringVar(&o.tableFormat, "table-format", "simple", "Output format: simple, plain, grid, rounded, ascii, markdown, csv, json or yaml")
	fs.BoolVar(&o.progress, "progress", false, "Show a progress bar (default when stderr is a terminal)")
	fs.BoolVar(&o.keepGoing, "keep-going", false, "Exit successfully even if some jobs failed")
	fs.BoolVar(&o.failFast, "fail-fast", false, "Stop at the first failed job")
	fs.BoolVar(&o.skipFailedNodes, "skip-failed-nodes", false, "Send no further AUID jobs to a node once one of its jobs failed")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")

	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log every job and full failure detail")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "console", "Log format (console, json)")
	fs.StringVar(&o.logFile, "log-file", "", "Also write JSON logs to this rotating file")
}

// configKeys maps configuration keys to the flags that set them.
var configKeys = map[string]string{
	"username":             "username",
	"password":             "password",
	"pool_size":            "pool-size",
	"pool_type":            "pool-type",
	"wait":                 "wait",
	"timeout":              "timeout",
	"insecure_skip_verify": "insecure-skip-verify",
	"depth":                "depth",
	"table_format":         "table-format",
	"progress":             "progress",
	"metrics_file":         "metrics-file",
	"log_level":            "log-level",
	"log_format":           "log-format",
	"log_file":             "log-file",
}

// exclusive lists flag pairs that must not be given together. Deprecated
// spellings conflict with their replacements.
var exclusive = [][2]string{
	{"legacy-username", "username"},
	{"legacy-password", "password"},
	{"process-pool", "thread-pool"},
	{"process-pool", "pool-type"},
	{"thread-pool", "pool-type"},
	{"keep-going", "fail-fast"},
}

func displayName(flag string) string {
	switch flag {
	case "legacy-username":
		return "-u"
	case "legacy-password":
		return "-p"
	default:
		return "--" + flag
	}
}

// validate checks the flag combinations that do not need configuration.
func (o *options) validate(fs *pflag.FlagSet, op entity.Operation) error {
	for _, pair := range exclusive {
		if fs.Changed(pair[0]) && fs.Changed(pair[1]) {
			return entity.Configurationf("%s and %s are mutually exclusive", displayName(pair[0]), displayName(pair[1]))
		}
	}
	// Zero only means "one per CPU" when it is the default.
	if fs.Changed("pool-size") && o.poolSize <= 0 {
		return &entity.InvalidPoolSizeError{Size: o.poolSize}
	}
	if fs.Changed("depth") && !op.TakesDepth {
		return entity.Configurationf("--depth applies only to deep-crawl, not %s", op.Name)
	}
	return nil
}

// loadConfig layers flags over the environment, the configuration file and
// the defaults.
func (o *options) loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	v := config.New()
	for key, name := range configKeys {
		if flag := fs.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}
	if fs.Changed("legacy-username") {
		v.Set("username", o.legacyUsername)
	}
	if fs.Changed("legacy-password") {
		v.Set("password", o.legacyPassword)
	}
	if fs.Changed("process-pool") && o.processPool {
		v.Set("pool_type", config.ProcessPool)
	}
	if fs.Changed("thread-pool") && o.threadPool {
		v.Set("pool_type", config.ThreadPool)
	}

	cfg, err := config.Load(v, o.configFile)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
