package internal

import (
	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/errs"
	"github.com/timvideos/fwfetch/internal/list"
	"github.com/timvideos/fwfetch/internal/middleware"
	"github.com/timvideos/fwfetch/internal/store"

	"github.com/spf13/cobra"
)

func NewRevisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revisions",
		Short: "List the revisions available in the archive",
		Long: `Lists the revision directories of the archive for --user and --branch, oldest first.
The newest one is what the "unstable" channel resolves to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := newListCmdLister(cmd)
			if err != nil {
				return err
			}

			sel, err := archiveSelection(cmd, l.Config)
			if err != nil {
				return err
			}

			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			if limit < 0 {
				return middleware.FlagComboError(errs.NegativeLimit, limit)
			}

			return l.Revisions(cmd.Context(), sel, limit)
		},
	}

	cmd.Flags().IntP("limit", "n", 0, "Only show the N newest revisions")
	return cmd
}

func NewChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the release channels and the revision each points at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := newListCmdLister(cmd)
			if err != nil {
				return err
			}

			sel, err := archiveSelection(cmd, l.Config)
			if err != nil {
				return err
			}
			return l.Channels(cmd.Context(), sel)
		},
	}
}

func newListCmdLister(cmd *cobra.Command) (*list.Lister, error) {
	cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
	if err != nil {
		return nil, err
	}
	st, err := middleware.Get[store.Store](cmd, middleware.CtxKeyStore)
	if err != nil {
		return nil, err
	}

	fetcher, lister := newClients(cfg, st)
	return list.New(cfg, lister, fetcher), nil
}
