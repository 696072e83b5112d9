// Package main provides the syncctl binary, an admin client for the
// recipe sync hub.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "syncctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		hubURL  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Admin client for the recipe sync hub",
		Long: `Syncctl inspects and manages the recipe collections hosted on a
running sync hub through its admin HTTP API.`,
	}

	cmd.PersistentFlags().StringVar(&hubURL, "hub-url", "http://localhost:8090", "Base URL of the sync hub")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "HTTP request timeout")

	client := func() *hubClient {
		return &hubClient{
			baseURL: strings.TrimRight(hubURL, "/"),
			http:    &http.Client{Timeout: timeout},
		}
	}

	cmd.AddCommand(listCmd(client))
	cmd.AddCommand(snapshotCmd(client))
	cmd.AddCommand(deleteCmd(client))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func listCmd(client func() *hubClient) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the collections hosted on the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			collections, err := client().listCollections()
			if err != nil {
				return err
			}
			if len(collections) == 0 {
				fmt.Println("no collections")
				return nil
			}
			fmt.Printf("%-32s %8s  %s\n", "ID", "RECIPES", "HEADS")
			for _, collection := range collections {
				fmt.Printf("%-32s %8d  %s\n", collection.ID, collection.Recipes, collection.Heads)
			}
			return nil
		},
	}
}

func snapshotCmd(client func() *hubClient) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <collection>",
		Short: "Print a collection's recipes as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := client().snapshot(args[0])
			if err != nil {
				return err
			}
			pretty, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil
		},
	}
}

func deleteCmd(client func() *hubClient) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection>",
		Short: "Delete a collection from the hub and its storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().deleteCollection(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted collection %q\n", args[0])
			return nil
		},
	}
}

// hubClient wraps the hub's admin HTTP API.
type hubClient struct {
	baseURL string
	http    *http.Client
}

type collectionInfo struct {
	ID      string `json:"id"`
	Heads   string `json:"heads"`
	Recipes int    `json:"recipes"`
}

func (c *hubClient) listCollections() ([]collectionInfo, error) {
	resp, err := c.http.Get(c.baseURL + "/collections")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var payload struct {
		Collections []collectionInfo `json:"collections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.Collections, nil
}

func (c *hubClient) snapshot(id string) (json.RawMessage, error) {
	resp, err := c.http.Get(c.baseURL + "/collections/" + url.PathEscape(id) + "/snapshot")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return raw, nil
}

func (c *hubClient) deleteCollection(id string) error {
	request, err := http.NewRequest(http.MethodDelete, c.baseURL+"/collections/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus(resp)
	}
	return nil
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if text := strings.TrimSpace(string(body)); text != "" {
		return fmt.Errorf("hub returned %s: %s", resp.Status, text)
	}
	return fmt.Errorf("hub returned %s", resp.Status)
}
