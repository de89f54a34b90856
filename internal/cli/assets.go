package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelkit/internal/assets"
)

var assetDuration float64

func newAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage local images and audio stored with the project",
	}

	add := &cobra.Command{
		Use:   "add <file>...",
		Short: "Store files and print their clip source tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAssetsAdd,
	}
	add.Flags().Float64Var(&assetDuration, "duration", 0, "Media duration in seconds (audio)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored assets",
		RunE:  runAssetsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <asset-id>",
		Short: "Delete a stored asset",
		Args:  cobra.ExactArgs(1),
		RunE:  runAssetsRemove,
	})
	return cmd
}

func runAssetsAdd(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := commandContext(cmd)
	var added []assets.Asset
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id, err := ws.assets.Put(ctx, projectID, data, assets.Meta{Name: filepath.Base(path), Duration: assetDuration})
		if err != nil {
			return fmt.Errorf("store %s: %w", filepath.Base(path), err)
		}
		a, err := ws.assets.Get(ctx, id)
		if err != nil {
			return err
		}
		ws.log.Info("asset stored", "asset", id, "name", a.Name, "size", a.Size)
		added = append(added, *a)
	}

	if outputJSON {
		return writeAssetsJSON(cmd, added)
	}
	for _, a := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s, %s)\n", a.Token(), a.Name, a.MIME, humanize.Bytes(uint64(a.Size)))
	}
	return nil
}

func runAssetsList(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	list, err := ws.assets.List(commandContext(cmd), projectID)
	if err != nil {
		return err
	}
	if outputJSON {
		return writeAssetsJSON(cmd, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no assets; run `reelkit assets add <file>`")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tNAME\tKIND\tSIZE\tADDED")
	for _, a := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Token(), a.Name, a.Kind, humanize.Bytes(uint64(a.Size)), humanize.Time(a.CreatedAt))
	}
	return tw.Flush()
}

func runAssetsRemove(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	id := args[0]
	if _, tokenID, ok := assets.ParseToken(id); ok {
		id = tokenID
	}
	if err := ws.assets.Delete(commandContext(cmd), id); err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	ws.resolver.Forget(id)
	fmt.Fprintf(cmd.OutOrStdout(), "deleted asset %s\n", id)
	return nil
}

type assetJSON struct {
	assets.Asset
	Token string `json:"token"`
}

func writeAssetsJSON(cmd *cobra.Command, list []assets.Asset) error {
	out := make([]assetJSON, 0, len(list))
	for _, a := range list {
		out = append(out, assetJSON{Asset: a, Token: a.Token()})
	}
	return writeJSON(cmd, out)
}
