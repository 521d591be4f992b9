// Pattern commands: add, list, rm, tag, link.
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jugglevault/jugglevault/pkg/types"
)

var (
	patternName       string
	patternDifficulty int
	patternBallCount  int
	patternVideo      string

	linkPrereq  bool
	linkRelated bool
	linkRemove  bool
	tagRemove   bool
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Manage juggling patterns",
}

var patternAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new pattern",
	Long: `Add creates a new juggling pattern.

Example:
  jugglevault pattern add --name "Mills Mess" --difficulty 5 --balls 3
  jugglevault pattern add --name "5 ball cascade" --difficulty 8 --balls 5 --video cascade5.mp4`,
	Args: cobra.NoArgs,
	RunE: runPatternAdd,
}

var patternListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all patterns",
	Args:  cobra.NoArgs,
	RunE:  runPatternList,
}

var patternRmCmd = &cobra.Command{
	Use:   "rm <pattern-id>",
	Short: "Delete a pattern and its sessions, tags, and links",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatternRm,
}

var patternTagCmd = &cobra.Command{
	Use:   "tag <pattern-id> <tag-id>",
	Short: "Attach or detach a tag",
	Args:  cobra.ExactArgs(2),
	RunE:  runPatternTag,
}

var patternLinkCmd = &cobra.Command{
	Use:   "link <pattern-id> <other-id>",
	Short: "Link two patterns as prerequisite or related",
	Long: `Link connects two patterns. With --prereq the second pattern becomes a
prerequisite of the first and the inverse dependent link is maintained
automatically. With --related the link is symmetric.

Example:
  jugglevault pattern link 4 2 --prereq
  jugglevault pattern link 4 7 --related
  jugglevault pattern link 4 2 --prereq --remove`,
	Args: cobra.ExactArgs(2),
	RunE: runPatternLink,
}

func init() {
	patternAddCmd.Flags().StringVar(&patternName, "name", "", "pattern name (required)")
	patternAddCmd.Flags().IntVar(&patternDifficulty, "difficulty", 1, "difficulty 1..10")
	patternAddCmd.Flags().IntVar(&patternBallCount, "balls", 3, "number of balls")
	patternAddCmd.Flags().StringVar(&patternVideo, "video", "", "video asset reference")
	_ = patternAddCmd.MarkFlagRequired("name")

	patternTagCmd.Flags().BoolVar(&tagRemove, "remove", false, "detach instead of attach")

	patternLinkCmd.Flags().BoolVar(&linkPrereq, "prereq", false, "prerequisite link")
	patternLinkCmd.Flags().BoolVar(&linkRelated, "related", false, "related link")
	patternLinkCmd.Flags().BoolVar(&linkRemove, "remove", false, "remove the link instead of adding it")

	patternCmd.AddCommand(patternAddCmd)
	patternCmd.AddCommand(patternListCmd)
	patternCmd.AddCommand(patternRmCmd)
	patternCmd.AddCommand(patternTagCmd)
	patternCmd.AddCommand(patternLinkCmd)
}

func runPatternAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	p := &types.Pattern{
		Name:       patternName,
		Difficulty: patternDifficulty,
		BallCount:  patternBallCount,
	}
	if patternVideo != "" {
		p.VideoPath = &patternVideo
	}

	if err := store.CreatePattern(p); err != nil {
		return fmt.Errorf("create pattern: %w", err)
	}

	if flagJSON {
		return printJSON(p)
	}
	fmt.Printf("Created pattern %d: %s\n", p.ID, p.Name)
	return nil
}

func runPatternList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	patterns, err := store.ListPatterns()
	if err != nil {
		return fmt.Errorf("list patterns: %w", err)
	}

	if flagJSON {
		return printJSON(patterns)
	}
	for _, p := range patterns {
		fmt.Printf("%d\t%s\tdifficulty=%d balls=%d\n", p.ID, p.Name, p.Difficulty, p.BallCount)
	}
	return nil
}

func runPatternRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeletePattern(id); err != nil {
		return fmt.Errorf("delete pattern: %w", err)
	}
	fmt.Printf("Deleted pattern %d\n", id)
	return nil
}

func runPatternTag(cmd *cobra.Command, args []string) error {
	patternID, err := parseID(args[0])
	if err != nil {
		return err
	}
	tagID, err := parseID(args[1])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if tagRemove {
		if err := store.UntagPattern(patternID, tagID); err != nil {
			return fmt.Errorf("untag pattern: %w", err)
		}
		fmt.Printf("Detached tag %d from pattern %d\n", tagID, patternID)
		return nil
	}

	if err := store.TagPattern(patternID, tagID); err != nil {
		return fmt.Errorf("tag pattern: %w", err)
	}
	fmt.Printf("Attached tag %d to pattern %d\n", tagID, patternID)
	return nil
}

func runPatternLink(cmd *cobra.Command, args []string) error {
	if linkPrereq == linkRelated {
		return fmt.Errorf("exactly one of --prereq or --related is required")
	}

	patternID, err := parseID(args[0])
	if err != nil {
		return err
	}
	otherID, err := parseID(args[1])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case linkPrereq && linkRemove:
		err = store.RemovePrerequisite(patternID, otherID)
	case linkPrereq:
		err = store.AddPrerequisite(patternID, otherID)
	case linkRemove:
		err = store.RemoveRelated(patternID, otherID)
	default:
		err = store.AddRelated(patternID, otherID)
	}
	if err != nil {
		return fmt.Errorf("link patterns: %w", err)
	}

	fmt.Printf("Linked patterns %d and %d\n", patternID, otherID)
	return nil
}

// parseID parses a positive int64 identifier from a command argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
