// Studio CLI
//
// Command-line client for the studio server:
//
//	studio-cli login                          Obtain a session token
//	studio-cli upload <file.zip>              Upload and register an archive
//	studio-cli list                           List stored archives
//	studio-cli show <id>                      Show one archive's entries
//	studio-cli entrypoint <id>                Show the detected entry point
//	studio-cli issues <id>                    Show scanner findings
//	studio-cli bundle <id>                    Print the executable bundle
//	studio-cli download <id> <out.zip>        Download an archive as ZIP
//	studio-cli modify <id> [flags]            Delete/rename paths into a new archive
//	studio-cli merge <id> <id>... [flags]     Merge archives into a new one
//	studio-cli watch                          Stream server events
//
// The auth token is read from STUDIO_TOKEN or the -token flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/client"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "login":
		cmdLogin(args)
	case "upload":
		cmdUpload(args)
	case "list":
		cmdList(args)
	case "show":
		cmdShow(args)
	case "entrypoint":
		cmdEntryPoint(args)
	case "issues":
		cmdIssues(args)
	case "bundle":
		cmdBundle(args)
	case "download":
		cmdDownload(args)
	case "modify":
		cmdModify(args)
	case "merge":
		cmdMerge(args)
	case "watch":
		cmdWatch(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: studio-cli <login|upload|list|show|entrypoint|issues|bundle|download|modify|merge|watch> [flags]")
}

// newClient parses the shared flags and returns a configured client plus the
// remaining positional arguments.
func newClient(name string, args []string, extra func(*flag.FlagSet)) (*client.Client, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	serverURL := fs.String("server", envOr("STUDIO_SERVER", "http://localhost:8080"), "Server URL")
	token := fs.String("token", os.Getenv("STUDIO_TOKEN"), "Auth token")
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	c := client.New(client.Config{BaseURL: *serverURL, AuthToken: *token})
	return c, fs.Args()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdLogin(args []string) {
	c, _ := newClient("login", args, nil)

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatal("read password: %v", err)
	}

	token, err := c.Login(context.Background(), string(pw))
	if err != nil {
		fatal("login failed: %v", err)
	}
	// Print the token so it can be exported as STUDIO_TOKEN.
	fmt.Println(token)
}

func cmdUpload(args []string) {
	c, rest := newClient("upload", args, nil)
	if len(rest) != 1 {
		fatal("usage: studio-cli upload <file.zip>")
	}
	path := rest[0]

	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read %s: %v", path, err)
	}

	ctx := context.Background()
	target, err := c.CreateUploadURL(ctx)
	if err != nil {
		fatal("create upload URL: %v", err)
	}
	if err := c.UploadArchive(ctx, target.UploadURL, data); err != nil {
		fatal("upload: %v", err)
	}

	ref, err := c.RegisterArchive(ctx, baseName(path), target.ObjectPath, int64(len(data)))
	if err != nil {
		fatal("register archive: %v", err)
	}
	fmt.Printf("%s  (%d files)\n", ref.ID, ref.FileCount)
}

func cmdList(args []string) {
	c, _ := newClient("list", args, nil)
	zips, err := c.ListArchives(context.Background())
	if err != nil {
		fatal("list archives: %v", err)
	}
	for _, z := range zips {
		fmt.Printf("%s  %-30s  %4d files  %s\n", z.ID, z.OriginalName, z.FileCount, z.Description)
	}
}

func cmdShow(args []string) {
	c, rest := newClient("show", args, nil)
	if len(rest) != 1 {
		fatal("usage: studio-cli show <id>")
	}
	z, err := c.GetArchive(context.Background(), rest[0])
	if err != nil {
		fatal("get archive: %v", err)
	}
	fmt.Printf("%s  %s  (%d files)\n", z.ID, z.OriginalName, z.Structure.FileCount)
	fmt.Println(z.Analysis.Description)
	for _, e := range z.Structure.Entries {
		if e.IsFolder {
			fmt.Printf("  %s/\n", e.Name)
			continue
		}
		fmt.Printf("  %s  (%d bytes)\n", e.Name, len(e.Content))
	}
}

func cmdEntryPoint(args []string) {
	c, rest := newClient("entrypoint", args, nil)
	if len(rest) != 1 {
		fatal("usage: studio-cli entrypoint <id>")
	}
	ep, err := c.EntryPoint(context.Background(), rest[0])
	if err != nil {
		fatal("entrypoint: %v", err)
	}
	if ep == nil {
		fmt.Println("not runnable")
		return
	}
	fmt.Printf("%s  type=%s  confidence=%.1f  (%s)\n", ep.File, ep.Type, ep.Confidence, ep.Reason)
}

func cmdIssues(args []string) {
	c, rest := newClient("issues", args, nil)
	if len(rest) != 1 {
		fatal("usage: studio-cli issues <id>")
	}
	issues, err := c.Issues(context.Background(), rest[0])
	if err != nil {
		fatal("issues: %v", err)
	}
	if len(issues) == 0 {
		fmt.Println("no issues found")
		return
	}
	for _, issue := range issues {
		fmt.Printf("%-7s  %s: %s", issue.Severity, issue.File, issue.Message)
		if issue.Suggestion != "" {
			fmt.Printf("  (%s)", issue.Suggestion)
		}
		fmt.Println()
	}
}

func cmdBundle(args []string) {
	c, rest := newClient("bundle", args, nil)
	if len(rest) != 1 {
		fatal("usage: studio-cli bundle <id>")
	}
	html, err := c.FetchBundle(context.Background(), rest[0])
	if err != nil {
		fatal("bundle: %v", err)
	}
	if html == "" {
		fmt.Fprintln(os.Stderr, "archive is not runnable")
		os.Exit(1)
	}
	fmt.Print(html)
}

func cmdDownload(args []string) {
	c, rest := newClient("download", args, nil)
	if len(rest) != 2 {
		fatal("usage: studio-cli download <id> <out.zip>")
	}
	data, err := c.Download(context.Background(), rest[0])
	if err != nil {
		fatal("download: %v", err)
	}
	if err := os.WriteFile(rest[1], data, 0o644); err != nil {
		fatal("write %s: %v", rest[1], err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), rest[1])
}

func cmdModify(args []string) {
	var deleteList, renameList string
	c, rest := newClient("modify", args, func(fs *flag.FlagSet) {
		fs.StringVar(&deleteList, "delete", "", "Comma-separated paths to delete")
		fs.StringVar(&renameList, "rename", "", "Comma-separated old=new path pairs")
	})
	if len(rest) != 1 {
		fatal("usage: studio-cli modify <id> [-delete a,b] [-rename old=new,...]")
	}

	var deleted []string
	if deleteList != "" {
		deleted = strings.Split(deleteList, ",")
	}
	var renames []models.RenamePair
	if renameList != "" {
		for _, pair := range strings.Split(renameList, ",") {
			old, new, ok := strings.Cut(pair, "=")
			if !ok {
				fatal("invalid rename pair: %s", pair)
			}
			renames = append(renames, models.RenamePair{OldPath: old, NewPath: new})
		}
	}

	ref, err := c.Modify(context.Background(), rest[0], deleted, renames)
	if err != nil {
		fatal("modify: %v", err)
	}
	fmt.Printf("%s  (%d files)\n", ref.ID, ref.FileCount)
}

func cmdMerge(args []string) {
	var resolveList string
	c, rest := newClient("merge", args, func(fs *flag.FlagSet) {
		fs.StringVar(&resolveList, "resolve", "", "Comma-separated path=strategy pairs (first|last|rename)")
	})
	if len(rest) < 2 {
		fatal("usage: studio-cli merge <id> <id>... [-resolve path=first,...]")
	}

	resolutions := map[string]string{}
	if resolveList != "" {
		for _, pair := range strings.Split(resolveList, ",") {
			path, strategy, ok := strings.Cut(pair, "=")
			if !ok {
				fatal("invalid resolution pair: %s", pair)
			}
			resolutions[path] = strategy
		}
	}

	resp, err := c.Merge(context.Background(), rest, resolutions)
	if err != nil {
		fatal("merge: %v", err)
	}
	fmt.Printf("%s  (%d files)\n", resp.ID, resp.FileCount)
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", envOr("STUDIO_SERVER", "http://localhost:8080"), "Server URL")
	token := fs.String("token", os.Getenv("STUDIO_TOKEN"), "Auth token")
	fs.Parse(args)

	sse := client.NewSSEClient(*serverURL)
	sse.SetAuthToken(*token)

	events, errs := sse.Subscribe(context.Background())
	go func() {
		for err := range errs {
			fmt.Fprintf(os.Stderr, "stream error: %v\n", err)
		}
	}()
	for e := range events {
		fmt.Printf("%s  zip=%s  path=%s\n", e.Type, e.ZipID, e.Path)
	}
}

func baseName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
