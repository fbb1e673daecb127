package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robertmeta/techfolio/feed"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/portfolio"
	"github.com/robertmeta/techfolio/server"
	"github.com/robertmeta/techfolio/store"
	"github.com/robertmeta/techfolio/timeline"
	"github.com/robertmeta/techfolio/tui"
	"github.com/urfave/cli/v2"
)

func syncArticles(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	results, err := e.svc.Sync(c.Context, e.id)
	switch {
	case errors.Is(err, portfolio.ErrUnauthorized):
		return exitFor(err)
	case errors.Is(err, feed.ErrSyncInProgress):
		return cli.Exit("Another sync is already running", ExitDataError)
	case err != nil:
		return cli.Exit(fmt.Sprintf("Failed to sync: %v", err), ExitDataError)
	}

	total := 0
	failed := 0
	for _, r := range results {
		total += r.Articles
		if r.Error != "" {
			failed++
		}
	}
	return outputJSON(map[string]interface{}{
		"synced_sources": len(results) - failed,
		"failed_sources": failed,
		"total_articles": total,
		"results":        results,
	})
}

func listArticles(c *cli.Context) error {
	opts, err := store.BuildArticleQuery(c.Int("limit"), c.String("since"), time.Now())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Invalid query options: %v", err), ExitUsageError)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	var articles []model.Article
	if e.id.Demo() {
		snap, err := e.svc.Articles(c.Context, e.id)
		if err != nil {
			return exitFor(err)
		}
		articles = limitArticles(snap.Items, opts)
	} else {
		articles, err = e.store.GetArticles(c.Context, e.id.ProfileID(), opts)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to get articles: %v", err), ExitDataError)
		}
	}

	return outputJSON(map[string]interface{}{
		"count":    len(articles),
		"limit":    opts.Limit,
		"articles": articles,
	})
}

// limitArticles applies an article query to an in-memory list.
func limitArticles(all []model.Article, opts store.ArticleQuery) []model.Article {
	out := []model.Article{}
	for _, a := range all {
		if opts.SinceTime != nil && a.CreatedAt.Unix() < *opts.SinceTime {
			continue
		}
		out = append(out, a)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

func showTimeline(c *cli.Context) error {
	if c.Bool("no-projects") && c.Bool("no-articles") {
		return cli.Exit("Cannot hide both projects and articles", ExitUsageError)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	q := portfolio.TimelineQuery{
		Filter: timeline.Filter{
			Text: c.String("text"),
			Tags: c.StringSlice("tag"),
			Role: c.String("role"),
		},
		Kinds: timeline.Kinds{
			Project: !c.Bool("no-projects"),
			Article: !c.Bool("no-articles"),
		},
		PageSize: c.Int("page-size"),
		Pages:    c.Int("pages"),
	}
	view, err := e.svc.Timeline(c.Context, e.id, q)
	if err != nil {
		return exitFor(err)
	}
	return outputJSON(view)
}

func showStats(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.svc.Stats(c.Context, e.id, c.Int("limit"))
	if err != nil {
		return exitFor(err)
	}
	return outputJSON(st)
}

func browse(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := tui.Run(c.Context, e.svc, e.id, e.cfg.Timeline.PageSize); err != nil {
		return cli.Exit(fmt.Sprintf("Browser failed: %v", err), ExitGeneralError)
	}
	return nil
}

func serve(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if c.IsSet("host") {
		e.cfg.Server.Host = c.String("host")
	}
	if c.IsSet("port") {
		e.cfg.Server.Port = c.Int("port")
	}

	srv := &http.Server{
		Addr:              e.cfg.Server.Addr(),
		Handler:           server.New(e.svc, e.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		e.logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("HTTP server error", "error", err)
			os.Exit(ExitGeneralError)
		}
	}()

	return waitForShutdown(e, srv)
}

func waitForShutdown(e *env, srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	e.logger.Info("received shutdown signal", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		e.logger.Error("HTTP server shutdown error", "error", err)
		return cli.Exit(fmt.Sprintf("Shutdown failed: %v", err), ExitGeneralError)
	}
	e.logger.Info("shutdown complete")
	return nil
}
