package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/cmd/videoapi/cmd/serve"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/cmd/videoapi/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "videoapi",
	Short: "Video understanding, embedding, and dual-store semantic search service",
	Long: `Video understanding, embedding, and dual-store semantic search service.

- Upload videos to object storage through presigned URLs
- Submit asynchronous understanding and embedding jobs against video AI models
- Fan embeddings out to two vector stores and compare their search quality side by side`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
