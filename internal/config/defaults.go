package config

// Index builder names accepted in indexers.enabled.
const (
	IndexerBowtie2 = "bowtie2"
	IndexerBWA     = "bwa"
	IndexerSTAR    = "star"
	IndexerRSEM    = "rsem"
)

const (
	defaultConfigPath      = "~/.config/refbuild/config.toml"
	defaultOutputRoot      = "~/references"
	defaultStateDir        = "~/.local/share/refbuild"
	defaultMinFreeGB       = 50
	defaultFTPBaseURL      = "https://ftp.ensembl.org/pub"
	defaultTransferTimeout = 3600
	defaultUserAgent       = "refbuild/dev"
	defaultThreads         = 4
	defaultOverhang        = 100
	defaultBowtie2Binary   = "bowtie2-build"
	defaultBWABinary       = "bwa"
	defaultSTARBinary      = "STAR"
	defaultRSEMBinary      = "rsem-prepare-reference"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// KnownIndexers lists every supported index builder in execution order.
func KnownIndexers() []string {
	return []string{IndexerBowtie2, IndexerBWA, IndexerSTAR, IndexerRSEM}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputRoot: defaultOutputRoot,
			StateDir:   defaultStateDir,
			MinFreeGB:  defaultMinFreeGB,
		},
		Transfer: Transfer{
			FTPBaseURL:     defaultFTPBaseURL,
			TimeoutSeconds: defaultTransferTimeout,
			Progress:       true,
			UserAgent:      defaultUserAgent,
		},
		Indexers: Indexers{
			Enabled:       KnownIndexers(),
			Threads:       defaultThreads,
			Overhang:      defaultOverhang,
			Bowtie2Binary: defaultBowtie2Binary,
			BWABinary:     defaultBWABinary,
			STARBinary:    defaultSTARBinary,
			RSEMBinary:    defaultRSEMBinary,
		},
		Orthologs: Orthologs{
			Partners: []string{"human", "mouse"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
