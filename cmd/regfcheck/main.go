// Command regfcheck is a read-only integrity checker for Windows NT
// registry hive files. It runs the three-pass validator in internal/check
// and reports findings on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbaan/regfcheck/internal/check"
	"github.com/wbaan/regfcheck/internal/source"
)

var rootCmd = &cobra.Command{
	Use:     "regfcheck <hive-file>",
	Short:   "Validate the structural integrity of a registry hive file",
	Version: "0.1.0",
	Long: `regfcheck reads a Windows NT registry hive file and runs a three-pass
structural validation:

  Pass 1  header and checksum
  Pass 2  sequential bin/cell scan
  Pass 3  tree traversal and cross-reference checks

It makes no changes to the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
	// Exit codes are set explicitly inside RunE; disable cobra's own usage
	// dump on error so the plain findings output stays the whole story.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	src, err := source.Open(path)
	if err != nil {
		printError("%v\n", err)
		if isOutOfMemory(err) {
			os.Exit(3)
		}
		os.Exit(2)
	}
	defer src.Close()

	sink := check.NewSink(os.Stdout)
	result := check.Run(src, sink)
	os.Exit(result.ExitCode)
	return nil
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(2)
	}
}
