package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"photobooth-admin/internal/controller"
	"photobooth-admin/internal/model"
	"photobooth-admin/internal/terminal"
)

func newPhotosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "List, print and delete photos from the command line",
	}
	cmd.AddCommand(newPhotosListCmd(a), newPhotosPrintCmd(a), newPhotosDeleteCmd(a))
	return cmd
}

func newPhotosListCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List photos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return err
			}
			return a.withController(cmd.OutOrStdout(), "", f, func(ctx context.Context, ctrl *controller.Controller, p *terminal.Presenter) error {
				return ctrl.Refresh(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "one of all, printed, unprinted")
	return cmd
}

func newPhotosPrintCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "print ID",
		Short: "Spool a photo for printing and mark it printed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(cmd.OutOrStdout(), out, model.FilterAll, func(ctx context.Context, ctrl *controller.Controller, p *terminal.Presenter) error {
				if err := loadQuietly(ctx, ctrl, p, args[0]); err != nil {
					return err
				}
				return ctrl.Handle(ctx, controller.PrintRequested{ID: args[0]})
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "./prints", "directory receiving spooled images")
	return cmd
}

func newPhotosDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a photo after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(cmd.OutOrStdout(), "", model.FilterAll, func(ctx context.Context, ctrl *controller.Controller, p *terminal.Presenter) error {
				if err := loadQuietly(ctx, ctrl, p, args[0]); err != nil {
					return err
				}

				var confirm controller.Confirmer = terminal.NewPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
				if yes {
					confirm = terminal.AlwaysConfirm
				}
				accepted := false
				recorded := controller.ConfirmFunc(func(ctx context.Context, prompt string) bool {
					accepted = confirm.Confirm(ctx, prompt)
					return accepted
				})

				if err := ctrl.Handle(ctx, controller.DeleteRequested{ID: args[0], Confirmer: recorded}); err != nil {
					return err
				}
				if !accepted {
					fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// withController opens the store and runs fn against a controller that
// renders to out.
func (a *app) withController(out io.Writer, spoolDir string, filter model.Filter, fn func(context.Context, *controller.Controller, *terminal.Presenter) error) error {
	photos, closeStore, err := openStore(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer closeStore()

	presenter := terminal.NewPresenter(out, spoolDir, a.cfg.Display.Location(), a.log)
	ctrl := controller.New(photos, presenter,
		controller.WithLogger(a.log),
		controller.WithFilter(filter),
	)
	return fn(context.Background(), ctrl, presenter)
}

// loadQuietly fetches the working set without rendering it and checks that
// id is part of it.
func loadQuietly(ctx context.Context, ctrl *controller.Controller, p *terminal.Presenter, id string) error {
	p.SetQuiet(true)
	defer p.SetQuiet(false)
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	if _, ok := ctrl.Photo(id); !ok {
		return fmt.Errorf("photo %q not found", id)
	}
	return nil
}
