package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var namespaceCmd = &cobra.Command{
	Use:     "namespace",
	Aliases: []string{"ns"},
	Short:   "Manage namespaces",
}

var namespaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List namespaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connectFromFlags(cmd)
		if err != nil {
			return err
		}
		names, err := db.ListAll()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No namespaces found")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var namespaceCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connectFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := db.Create(args[0]); err != nil {
			return err
		}
		fmt.Printf("namespace created: %s\n", args[0])
		return nil
	},
}

var namespaceRemoveCmd = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"delete"},
	Short:   "Delete a namespace and all its data",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connectFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := db.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("namespace deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	namespaceCmd.AddCommand(namespaceListCmd)
	namespaceCmd.AddCommand(namespaceCreateCmd)
	namespaceCmd.AddCommand(namespaceRemoveCmd)
}
