package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"chaoticweather.ai/internal/protocol"
)

func adminURL(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

// call sends body (JSON encoded when non-nil), prints the reply and exits
// non-zero on a non-2xx status.
func call(method, u string, body any) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fmt.Fprintln(os.Stderr, "encode:", err)
			os.Exit(1)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, u, rd)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cl := &http.Client{Timeout: 10 * time.Second}
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		var em protocol.ErrorMsg
		if json.Unmarshal(b, &em) == nil && em.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "did you mean %q?\n", em.Suggestion)
		}
		os.Exit(1)
	}
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	call(http.MethodGet, adminURL(*baseURL, "/admin/v1/state"), nil)
}

func summonCmd(args []string) {
	fs := flag.NewFlagSet("summon", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	worldID := fs.String("world", "world", "world id")
	actor := fs.String("actor", "", "actor id (required)")
	_ = fs.Parse(args)
	if strings.TrimSpace(*actor) == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: admin summon -actor ID [-world W] <incident>")
		os.Exit(2)
	}
	call(http.MethodPost, adminURL(*baseURL, "/admin/v1/summon"), protocol.SummonReq{
		World: *worldID,
		Actor: *actor,
		Kind:  fs.Arg(0),
	})
}

func regionCmd(args []string) {
	fs := flag.NewFlagSet("region", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	worldID := fs.String("world", "", "world id (default: server default world)")
	pos1 := fs.String("pos1", "", "first corner x,y,z")
	pos2 := fs.String("pos2", "", "second corner x,y,z")
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: admin region [flags] <add|clear> <incident>")
		os.Exit(2)
	}
	key := fs.Arg(1)
	switch fs.Arg(0) {
	case "add":
		a, err := parsePos(*pos1)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pos1:", err)
			os.Exit(2)
		}
		b, err := parsePos(*pos2)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pos2:", err)
			os.Exit(2)
		}
		call(http.MethodPost, adminURL(*baseURL, "/admin/v1/regions"), protocol.RegionReq{Key: key, World: *worldID, Pos1: a, Pos2: b})
	case "clear":
		call(http.MethodDelete, adminURL(*baseURL, "/admin/v1/regions?key="+url.QueryEscape(key)), nil)
	default:
		fmt.Fprintf(os.Stderr, "unknown region op %q\n", fs.Arg(0))
		os.Exit(2)
	}
}

func reloadCmd(args []string) {
	fs := flag.NewFlagSet("reload", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	call(http.MethodPost, adminURL(*baseURL, "/admin/v1/reload"), nil)
}

func weatherCmd(args []string) {
	fs := flag.NewFlagSet("weather", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	worldID := fs.String("world", "world", "world id")
	ticks := fs.Uint64("ticks", 6000, "duration in ticks")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: admin weather [flags] <clear|rain|thunder>")
		os.Exit(2)
	}
	call(http.MethodPost, adminURL(*baseURL, "/admin/v1/weather"), protocol.WeatherReq{World: *worldID, Weather: fs.Arg(0), Ticks: *ticks})
}

func joinCmd(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	worldID := fs.String("world", "", "world id (default: server default world)")
	_ = fs.Parse(args)
	name := "admin"
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	call(http.MethodPost, adminURL(*baseURL, "/admin/v1/actors"), protocol.JoinReq{World: *worldID, Name: name})
}
