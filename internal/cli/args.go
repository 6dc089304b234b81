package cli

import (
	"fmt"
	"strings"
)

// Args represents the top-level command structure
type Args struct {
	Config  string `arg:"--config" default:"./lyrify.toml" help:"Configuration file"`
	Server  string `arg:"-s,--server" help:"Lyrics proxy URL (overrides config and LYRIFY_SERVER_URL)"`
	Verbose bool   `arg:"-v,--verbose" help:"Enable debug logging"`

	Search  *SearchCmd  `arg:"subcommand:search" help:"Search lyrics for a song"`
	History *HistoryCmd `arg:"subcommand:history" help:"Show recent searches"`
	Clear   *ClearCmd   `arg:"subcommand:clear" help:"Clear search history"`
	Shell   *ShellCmd   `arg:"subcommand:shell" help:"Interactive session (default)"`
}

// SearchCmd represents 'lyrify-cli search'
type SearchCmd struct {
	Query []string `arg:"positional,required" help:"Song to search for, e.g. \"Bohemian Rhapsody Queen\""`
	Copy  bool     `arg:"-c,--copy" help:"Copy the lyrics to the clipboard"`
}

// HistoryCmd represents 'lyrify-cli history'
type HistoryCmd struct {
	Index *int `arg:"positional" help:"Repeat the search at this position (1=newest)"`
}

// ClearCmd represents 'lyrify-cli clear'
type ClearCmd struct {
	Yes bool `arg:"-y,--yes" help:"Do not ask for confirmation"`
}

// ShellCmd represents 'lyrify-cli shell'
type ShellCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "lyrify-cli - search song lyrics through a lyrify proxy"
}

// Version returns the program version
func (Args) Version() string {
	return "lyrify-cli 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  lyrify-cli                               # Interactive shell
  lyrify-cli search Bohemian Rhapsody      # One-off search
  lyrify-cli search -c Imagine             # Search and copy lyrics
  lyrify-cli history                       # List recent searches
  lyrify-cli history 2                     # Repeat the second most recent search
  lyrify-cli clear -y                      # Clear history without asking`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.Search != nil {
		return args.Search.Validate()
	}
	if args.History != nil {
		return args.History.Validate()
	}
	return nil
}

// Validate validates search command arguments
func (s *SearchCmd) Validate() error {
	if strings.TrimSpace(s.QueryString()) == "" {
		return fmt.Errorf("search query must not be empty")
	}
	return nil
}

// QueryString joins the positional words into one query.
func (s *SearchCmd) QueryString() string {
	return strings.Join(s.Query, " ")
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	if h.Index != nil && *h.Index < 1 {
		return fmt.Errorf("index must be 1 or greater")
	}
	return nil
}
