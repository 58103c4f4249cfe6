package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "marketscope"}

	root.AddCommand(serveCMD(), migrateCMD(), analyzeCMD(), showCMD(), exportCMD())
	_ = root.Execute()
}
