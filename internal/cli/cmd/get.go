package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/buytown/admin-console/internal/app"
)

var getCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "GET a backend path with the current credentials",
	Long:  `Send a GET request to the BuyTown API, e.g. "buytown get /orders?status=pending".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openApp(cmd.Context(), func(a *app.App) error {
			var body json.RawMessage
			if err := a.Client.Do(cmd.Context(), http.MethodGet, args[0], nil, &body); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), body)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func printJSON(w io.Writer, body []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		fmt.Fprintln(w, pretty.String())
		return
	}
	fmt.Fprintln(w, string(body))
}
