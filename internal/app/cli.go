package app

import "github.com/spf13/pflag"

// RegisterIndexFlags registers flags for the sectionizing command
func RegisterIndexFlags(flags *pflag.FlagSet) {
	flags.IntP("depth", "d", -1, "Maximum directory depth to walk (negative for unlimited)")
	flags.StringSliceP("extensions", "e", nil, "Markdown file extensions (comma-separated)")
	flags.Int64("max-file-size", 0, "Maximum markdown file size in bytes")
	flags.Int("parallelism", 0, "Number of files sectionized concurrently")
	flags.Bool("pretty", true, "Pretty-print the JSON output")
	flags.String("index-dir", "", "Directory for the persisted section index")
}

// RegisterSearchFlags registers flags for the search command
func RegisterSearchFlags(flags *pflag.FlagSet) {
	flags.String("index-dir", "", "Directory for the persisted section index")
	flags.IntP("max-results", "n", 0, "Maximum number of search results")
	flags.StringP("file", "f", "", "Restrict results to a single file path")
	flags.StringP("language", "l", "", "Restrict results to sections with code blocks in this language")
	flags.Int("level", 0, "Restrict results to a heading level (1-6)")
}

// RegisterServeFlags registers flags for the serve command
func RegisterServeFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
	flags.String("index-dir", "", "Directory for the persisted section index")
	flags.IntP("max-results", "n", 0, "Maximum number of search results")
}
