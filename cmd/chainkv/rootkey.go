package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var rootKeyCmd = &cobra.Command{
	Use:   "rootkey",
	Short: "Inspect root keys",
}

var rootKeyListCmd = &cobra.Command{
	Use:   "list NAMESPACE",
	Short: "List root keys that have taken a first write within a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connectFromFlags(cmd)
		if err != nil {
			return err
		}
		keys, err := db.ListRootKeys(args[0])
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("No root keys found")
			return nil
		}
		for _, k := range keys {
			fmt.Println(hex.EncodeToString(k))
		}
		return nil
	},
}

func init() {
	rootKeyCmd.AddCommand(rootKeyListCmd)
}
