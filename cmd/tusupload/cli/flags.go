package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jnovack/flag"
	"golang.org/x/exp/slices"

	"github.com/FHNW/plone.restapi/internal/grouped_flags"
	"github.com/FHNW/plone.restapi/pkg/hooks"
	"github.com/FHNW/plone.restapi/pkg/sessionstore"
)

// EnvPrefix is prepended to the environment variables which can be used
// instead of flags, e.g. TUS_TMP_FILE_DIR for -tmp-file-dir.
const EnvPrefix = "TUS"

var Flags struct {
	HttpHost                     string
	HttpPort                     string
	HttpSock                     string
	EnableH2C                    bool
	Basepath                     string
	BehindProxy                  bool
	MaxSize                      int64
	TmpFileDir                   string
	ClientHome                   string
	ExpirationPeriod             time.Duration
	SweepInterval                time.Duration
	DisableSweepOnCreate         bool
	Locker                       string
	RedisURI                     string
	RedisLockExpiry              time.Duration
	FilelockHolderPollInterval   time.Duration
	FilelockAcquirerPollInterval time.Duration
	ContentDSN                   string
	ContentFoldersString         string
	ContentFolders               []string
	BlobDir                      string
	S3Bucket                     string
	S3ObjectPrefix               string
	S3Endpoint                   string
	S3LogAPICalls                bool
	GCSBucket                    string
	GCSObjectPrefix              string
	AzStorage                    string
	AzContainerAccessType        string
	AzBlobAccessTier             string
	AzObjectPrefix               string
	AzEndpoint                   string
	FinalizeConcurrency          int
	DisableCors                  bool
	CorsAllowOrigin              string
	CorsAllowCredentials         bool
	CorsAllowMethods             string
	CorsAllowHeaders             string
	CorsMaxAge                   string
	CorsExposeHeaders            string
	EnabledHooksString           string
	EnabledHooks                 []hooks.HookType
	FileHooksDir                 string
	HttpHooksEndpoint            string
	HttpHooksForwardHeaders      string
	HttpHooksRetry               int
	HttpHooksBackoff             time.Duration
	HttpHooksTimeout             time.Duration
	GrpcHooksEndpoint            string
	GrpcHooksRetry               int
	GrpcHooksBackoff             time.Duration
	GrpcHooksTimeout             time.Duration
	GrpcHooksSecure              bool
	GrpcHooksServerTLSCertFile   string
	GrpcHooksClientTLSCertFile   string
	GrpcHooksClientTLSKeyFile    string
	GrpcHooksForwardHeaders      string
	PluginHookPath               string
	ShowVersion                  bool
	ExposeMetrics                bool
	MetricsPath                  string
	ExposePprof                  bool
	PprofPath                    string
	PprofBlockProfileRate        int
	PprofMutexProfileRate        int
	ShowGreeting                 bool
	VerboseOutput                bool
	ShowStartupLogs              bool
	LogFormat                    string
	NetworkTimeout               time.Duration
	ShutdownTimeout              time.Duration
	AcquireLockTimeout           time.Duration
}

func ParseFlags() {
	if err := parseFlags(os.Args[1:], flag.ExitOnError); err != nil {
		stderr.Fatalf("%s", err)
	}

	SetupStructuredLogger()
}

func parseFlags(args []string, errorHandling flag.ErrorHandling) error {
	fs := grouped_flags.NewFlagGroupSet(EnvPrefix, errorHandling)

	fs.AddGroup("Listening options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.HttpHost, "host", "0.0.0.0", "Host to bind HTTP server to")
		f.StringVar(&Flags.HttpPort, "port", "8080", "Port to bind HTTP server to")
		f.StringVar(&Flags.HttpSock, "unix-sock", "", "If set, will listen to a UNIX socket at this location instead of a TCP socket")
		f.StringVar(&Flags.Basepath, "base-path", "/", "URL path (or absolute URL) under which the content tree is mounted")
		f.BoolVar(&Flags.BehindProxy, "behind-proxy", false, "Respect X-Forwarded-* and similar headers which may be set by proxies")
		f.BoolVar(&Flags.EnableH2C, "enable-h2c", false, "Allow for HTTP/2 cleartext (h2c) connections (non-encrypted)")
	})

	fs.AddGroup("Upload protocol options", func(f *flag.FlagSet) {
		f.Int64Var(&Flags.MaxSize, "max-size", 0, "Maximum size of a single upload in bytes")
		f.DurationVar(&Flags.ExpirationPeriod, "expiration-period", sessionstore.DefaultExpirationPeriod, "Duration after its last modification at which an unfinished upload expires")
	})

	fs.AddGroup("Session storage options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.TmpFileDir, "tmp-file-dir", "", "Directory to store upload sessions in. Defaults to tus-uploads inside the client home")
		f.StringVar(&Flags.ClientHome, "client-home", os.Getenv("CLIENT_HOME"), "Directory holding the instance's data, used to derive the default for -tmp-file-dir (defaults to $CLIENT_HOME)")
		f.DurationVar(&Flags.SweepInterval, "sweep-interval", 0, "If set, expired uploads are removed in the background at this interval")
		f.BoolVar(&Flags.DisableSweepOnCreate, "disable-sweep-on-create", false, "Do not remove expired uploads before each new upload is created")
	})

	fs.AddGroup("Locking options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.Locker, "locker", "memory", "Mechanism serializing requests for the same upload (memory, file or redis)")
		f.StringVar(&Flags.RedisURI, "redis-uri", "redis://localhost:6379/0", "Redis server used by -locker=redis")
		f.DurationVar(&Flags.RedisLockExpiry, "redis-lock-expiry", 8*time.Second, "Expiry of Redis locks which are not kept alive anymore")
		f.DurationVar(&Flags.FilelockHolderPollInterval, "filelock-holder-poll-interval", time.Second, "The holder of a lock polls regularly to see if another request handler needs the lock. This flag specifies the poll interval.")
		f.DurationVar(&Flags.FilelockAcquirerPollInterval, "filelock-acquirer-poll-interval", 500*time.Millisecond, "The acquirer of a lock polls regularly to see if the lock has been released. This flag specifies the poll interval.")
	})

	fs.AddGroup("Content options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.ContentDSN, "content-dsn", "", "Database holding the content objects. postgres:// URLs use PostgreSQL, anything else is a SQLite file. Defaults to content.db inside the client home")
		f.StringVar(&Flags.ContentFoldersString, "content-folders", "", "Comma separated list of folder paths to create on startup (e.g. news,news/2024)")
		f.IntVar(&Flags.FinalizeConcurrency, "finalize-concurrency", 0, "Maximum number of uploads turned into content objects at the same time. 0 means no limit")
	})

	fs.AddGroup("Blob storage options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.BlobDir, "blob-dir", "", "Directory to store binary field values in. Defaults to blobs inside the client home")
		f.StringVar(&Flags.S3Bucket, "s3-bucket", "", "Store binary field values in this AWS S3 bucket instead (credentials are taken from the default AWS credential chain)")
		f.StringVar(&Flags.S3ObjectPrefix, "s3-object-prefix", "", "Prefix for S3 object names")
		f.StringVar(&Flags.S3Endpoint, "s3-endpoint", "", "Endpoint to use S3 compatible implementations like minio (requires s3-bucket to be pass)")
		f.BoolVar(&Flags.S3LogAPICalls, "s3-log-api-calls", false, "Log all calls made to the S3 API for debugging purposes")
		f.StringVar(&Flags.GCSBucket, "gcs-bucket", "", "Store binary field values in this Google Cloud Storage bucket instead (requires the GCS_SERVICE_ACCOUNT_FILE environment variable to be set)")
		f.StringVar(&Flags.GCSObjectPrefix, "gcs-object-prefix", "", "Prefix for GCS object names")
		f.StringVar(&Flags.AzStorage, "azure-storage", "", "Store binary field values in this Azure BlockBlob Storage container instead (requires the AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY environment variables to be set)")
		f.StringVar(&Flags.AzContainerAccessType, "azure-container-access-type", "", "Access type when creating a new container if it does not exist (possible values: blob, container, '')")
		f.StringVar(&Flags.AzBlobAccessTier, "azure-blob-access-tier", "", "Blob access tier when uploading new files (possible values: archive, cool, hot, '')")
		f.StringVar(&Flags.AzObjectPrefix, "azure-object-prefix", "", "Prefix for Azure object names")
		f.StringVar(&Flags.AzEndpoint, "azure-endpoint", "", "Custom Endpoint to use for Azure BlockBlob Storage (requires azure-storage to be pass)")
	})

	fs.AddGroup("CORS options", func(f *flag.FlagSet) {
		f.BoolVar(&Flags.DisableCors, "disable-cors", false, "Disable CORS headers")
		f.StringVar(&Flags.CorsAllowOrigin, "cors-allow-origin", ".*", "Regular expression used to determine if the Origin header is allowed. If not, no CORS headers will be sent. By default, all origins are allowed.")
		f.BoolVar(&Flags.CorsAllowCredentials, "cors-allow-credentials", false, "Allow credentials by setting Access-Control-Allow-Credentials: true")
		f.StringVar(&Flags.CorsAllowMethods, "cors-allow-methods", "", "Comma-separated list of request methods that are included in Access-Control-Allow-Methods in addition to the required ones")
		f.StringVar(&Flags.CorsAllowHeaders, "cors-allow-headers", "", "Comma-separated list of headers that are included in Access-Control-Allow-Headers in addition to the required ones")
		f.StringVar(&Flags.CorsMaxAge, "cors-max-age", "86400", "Value of the Access-Control-Max-Age header to control the cache duration of CORS responses.")
		f.StringVar(&Flags.CorsExposeHeaders, "cors-expose-headers", "", "Comma-separated list of headers that are included in Access-Control-Expose-Headers in addition to the required ones")
	})

	fs.AddGroup("General hook options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.EnabledHooksString, "hooks-enabled-events", "post-create,post-finish", "Comma separated list of enabled hook events (e.g. post-create,post-finish). Leave empty to enable all events")
	})

	fs.AddGroup("File hook options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.FileHooksDir, "hooks-dir", "", "Directory to search for available hooks scripts")
	})

	fs.AddGroup("HTTP hook options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.HttpHooksEndpoint, "hooks-http", "", "An HTTP endpoint to which hook events will be sent to")
		f.StringVar(&Flags.HttpHooksForwardHeaders, "hooks-http-forward-headers", "", "List of HTTP request headers to be forwarded from the client request to the hook endpoint")
		f.IntVar(&Flags.HttpHooksRetry, "hooks-http-retry", 3, "Number of times to retry on a 500 or network timeout")
		f.DurationVar(&Flags.HttpHooksBackoff, "hooks-http-backoff", 1*time.Second, "Wait period before retrying each retry")
		f.DurationVar(&Flags.HttpHooksTimeout, "hooks-http-timeout", 30*time.Second, "Timeout for a single hook request")
	})

	fs.AddGroup("gRPC hook options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.GrpcHooksEndpoint, "hooks-grpc", "", "A gRPC endpoint to which hook events will be sent to")
		f.IntVar(&Flags.GrpcHooksRetry, "hooks-grpc-retry", 3, "Number of times to retry on a server error or network timeout")
		f.DurationVar(&Flags.GrpcHooksBackoff, "hooks-grpc-backoff", 1*time.Second, "Wait period before retrying each retry")
		f.DurationVar(&Flags.GrpcHooksTimeout, "hooks-grpc-timeout", 30*time.Second, "Timeout for a single hook call, including retries")
		f.BoolVar(&Flags.GrpcHooksSecure, "hooks-grpc-secure", false, "Enables secure connection via TLS certificates to the specified gRPC endpoint")
		f.StringVar(&Flags.GrpcHooksServerTLSCertFile, "hooks-grpc-server-tls-certificate", "", "Path to the file containing the TLS certificate of the remote gRPC server")
		f.StringVar(&Flags.GrpcHooksClientTLSCertFile, "hooks-grpc-client-tls-certificate", "", "Path to the file containing the client certificate for mTLS")
		f.StringVar(&Flags.GrpcHooksClientTLSKeyFile, "hooks-grpc-client-tls-key", "", "Path to the file containing the client key for mTLS")
		f.StringVar(&Flags.GrpcHooksForwardHeaders, "hooks-grpc-forward-headers", "", "List of HTTP request headers to be forwarded from the client request to the hook endpoint")
	})

	fs.AddGroup("Plugin hook options", func(f *flag.FlagSet) {
		f.StringVar(&Flags.PluginHookPath, "hooks-plugin", "", "Path to an executable implementing the hook plugin protocol")
	})

	fs.AddGroup("Monitoring, profiling, logging options", func(f *flag.FlagSet) {
		f.BoolVar(&Flags.ExposeMetrics, "expose-metrics", true, "Expose metrics about upload usage")
		f.StringVar(&Flags.MetricsPath, "metrics-path", "/metrics", "Path under which the metrics endpoint will be accessible")
		f.BoolVar(&Flags.ExposePprof, "expose-pprof", false, "Expose the pprof interface over HTTP for profiling")
		f.StringVar(&Flags.PprofPath, "pprof-path", "/debug/pprof/", "Path under which the pprof endpoint will be accessible")
		f.IntVar(&Flags.PprofBlockProfileRate, "pprof-block-profile-rate", 0, "Fraction of goroutine blocking events that are reported in the blocking profile")
		f.IntVar(&Flags.PprofMutexProfileRate, "pprof-mutex-profile-rate", 0, "Fraction of mutex contention events that are reported in the mutex profile")
		f.BoolVar(&Flags.ShowGreeting, "show-greeting", true, "Show the greeting message for GET requests to the root path")
		f.BoolVar(&Flags.ShowVersion, "version", false, "Print version information")
		f.BoolVar(&Flags.VerboseOutput, "verbose", true, "Enable verbose logging output")
		f.BoolVar(&Flags.ShowStartupLogs, "show-startup-logs", true, "Print details about the configuration during startup")
		f.StringVar(&Flags.LogFormat, "log-format", "text", "Logging format (text or json)")
	})

	fs.AddGroup("Timeout options", func(f *flag.FlagSet) {
		f.DurationVar(&Flags.NetworkTimeout, "network-timeout", 60*time.Second, "Timeout for reading the request and writing the response. If no data is received for this duration, the connection is considered dead.")
		f.DurationVar(&Flags.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "Timeout for closing connections gracefully during shutdown. After the timeout, the server will exit regardless of any open connection.")
		f.DurationVar(&Flags.AcquireLockTimeout, "acquire-lock-timeout", 20*time.Second, "Timeout for a request handler to wait for acquiring the upload lock.")
	})

	if err := fs.ParseArgs(args); err != nil {
		return err
	}

	if err := SetEnabledHooks(); err != nil {
		return err
	}

	switch Flags.Locker {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown locker in -locker flag: %s", Flags.Locker)
	}

	if Flags.LogFormat != "text" && Flags.LogFormat != "json" {
		return fmt.Errorf("unknown log format in -log-format flag: %s", Flags.LogFormat)
	}

	if Flags.ClientHome == "" {
		Flags.ClientHome = "."
	}
	if Flags.TmpFileDir == "" {
		Flags.TmpFileDir = filepath.Join(Flags.ClientHome, "tus-uploads")
	}
	if Flags.ContentDSN == "" {
		Flags.ContentDSN = filepath.Join(Flags.ClientHome, "content.db")
	}
	if Flags.BlobDir == "" {
		Flags.BlobDir = filepath.Join(Flags.ClientHome, "blobs")
	}

	Flags.ContentFolders = nil
	for _, folder := range strings.Split(Flags.ContentFoldersString, ",") {
		folder = strings.Trim(strings.TrimSpace(folder), "/")
		if folder != "" {
			Flags.ContentFolders = append(Flags.ContentFolders, folder)
		}
	}

	if Flags.FileHooksDir != "" {
		Flags.FileHooksDir, _ = filepath.Abs(Flags.FileHooksDir)
	}
	if Flags.PluginHookPath != "" {
		Flags.PluginHookPath, _ = filepath.Abs(Flags.PluginHookPath)
	}

	return nil
}

func SetEnabledHooks() error {
	Flags.EnabledHooks = nil

	if Flags.EnabledHooksString != "" {
		slc := strings.Split(Flags.EnabledHooksString, ",")

		for _, h := range slc {
			h = strings.TrimSpace(h)

			if !slices.Contains(hooks.AvailableHooks, hooks.HookType(h)) {
				return fmt.Errorf("unknown hook event type in -hooks-enabled-events flag: %s", h)
			}

			Flags.EnabledHooks = append(Flags.EnabledHooks, hooks.HookType(h))
		}
	}

	if len(Flags.EnabledHooks) == 0 {
		Flags.EnabledHooks = hooks.AvailableHooks
	}

	return nil
}
