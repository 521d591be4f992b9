// Tag commands: add, list, rm.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/pkg/types"
)

var (
	tagName  string
	tagColor int64
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new tag",
	Args:  cobra.NoArgs,
	RunE:  runTagAdd,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <tag-id>",
	Short: "Delete a tag and its pattern attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagRm,
}

func init() {
	tagAddCmd.Flags().StringVar(&tagName, "name", "", "tag name (required, unique)")
	tagAddCmd.Flags().Int64Var(&tagColor, "color", 0, "numeric color value")
	_ = tagAddCmd.MarkFlagRequired("name")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagRmCmd)
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	t := &types.Tag{Name: tagName, Color: tagColor}
	if err := store.CreateTag(t); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}

	if flagJSON {
		return printJSON(t)
	}
	fmt.Printf("Created tag %d: %s\n", t.ID, t.Name)
	return nil
}

func runTagList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	tags, err := store.ListTags()
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	if flagJSON {
		return printJSON(tags)
	}
	for _, t := range tags {
		fmt.Printf("%d\t%s\n", t.ID, t.Name)
	}
	return nil
}

func runTagRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteTag(id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	fmt.Printf("Deleted tag %d\n", id)
	return nil
}
