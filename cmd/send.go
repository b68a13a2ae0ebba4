package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/panelhost/canvas/client"
)

var (
	sendPort  int
	sendTitle string
	sendPanel string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Push an artifact to a running host",
	Long: `Pushes a single artifact to the display host and prints the panel
id it landed in. Use --panel to redraw an existing panel instead of
opening a new one.`,
}

var sendMarkdownCmd = &cobra.Command{
	Use:   "markdown [file]",
	Short: "Render a markdown document (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readArg(args)
		if err != nil {
			return err
		}
		c := newSendClient()
		defer c.Close()
		id, err := c.ShowMarkdown(content, sendTitle, sendPanel)
		return reportRender(c, id, err)
	},
}

var sendFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Render a source file with syntax highlighting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		id, err := c.ShowFile(args[0], client.FileOptions{Title: sendTitle, PanelID: sendPanel})
		return reportRender(c, id, err)
	},
}

var sendCSVCmd = &cobra.Command{
	Use:   "csv <path>",
	Short: "Render a CSV file as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		id, err := c.ShowCSV(args[0], "", sendTitle, sendPanel)
		return reportRender(c, id, err)
	},
}

var sendJSONCmd = &cobra.Command{
	Use:   "json [file]",
	Short: "Render a JSON document (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readArg(args)
		if err != nil {
			return err
		}
		var content any
		if err := json.Unmarshal([]byte(raw), &content); err != nil {
			return fmt.Errorf("parsing json: %w", err)
		}
		c := newSendClient()
		defer c.Close()
		id, err := c.ShowJSON(content, false, sendTitle, sendPanel)
		return reportRender(c, id, err)
	},
}

var sendImageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Render an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		id, err := c.ShowImage(args[0], client.ImageOptions{Title: sendTitle, PanelID: sendPanel})
		return reportRender(c, id, err)
	},
}

var sendDiffCmd = &cobra.Command{
	Use:   "diff <original> <modified>",
	Short: "Render a side-by-side comparison of two files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		modified, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}
		c := newSendClient()
		defer c.Close()
		id, err := c.ShowDiff(string(original), string(modified), client.DiffOptions{
			OriginalPath: args[0],
			ModifiedPath: args[1],
			Title:        sendTitle,
			PanelID:      sendPanel,
		})
		return reportRender(c, id, err)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check whether a display host is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		if !c.Ping() {
			return fmt.Errorf("no display host on port %d", sendPort)
		}
		fmt.Printf("Display host is up on port %d.\n", sendPort)
		return nil
	},
}

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "Manage panels on a running host",
}

var panelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open panels in creation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		ids, err := c.ListPanels()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No open panels.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var panelsCloseCmd = &cobra.Command{
	Use:   "close <panel-id>",
	Short: "Close a panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		return c.ClosePanel(args[0])
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a file with the system default application via the host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newSendClient()
		defer c.Close()
		return c.OpenFile(args[0])
	},
}

func init() {
	sendCmd.PersistentFlags().IntVar(&sendPort, "port", client.DefaultPort, "host port")
	sendCmd.PersistentFlags().StringVar(&sendTitle, "title", "", "panel title")
	sendCmd.PersistentFlags().StringVar(&sendPanel, "panel", "", "redraw an existing panel")
	sendCmd.AddCommand(sendMarkdownCmd, sendFileCmd, sendCSVCmd, sendJSONCmd, sendImageCmd, sendDiffCmd)

	pingCmd.Flags().IntVar(&sendPort, "port", client.DefaultPort, "host port")
	panelsCmd.PersistentFlags().IntVar(&sendPort, "port", client.DefaultPort, "host port")
	panelsCmd.AddCommand(panelsListCmd, panelsCloseCmd)
	openCmd.Flags().IntVar(&sendPort, "port", client.DefaultPort, "host port")

	rootCmd.AddCommand(sendCmd, pingCmd, panelsCmd, openCmd)
}

func newSendClient() *client.Client {
	return client.New(client.Options{Port: sendPort, AutoReconnect: true})
}

// readArg returns the named file's content, or stdin when no argument
// was given.
func readArg(args []string) (string, error) {
	if len(args) == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(raw), nil
}

func reportRender(c *client.Client, id string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(id)
	if path := c.CurrentFile(); path != "" {
		fmt.Println(sessionPathStyle.Render(path))
	}
	return nil
}
