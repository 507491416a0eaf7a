package weave

import (
	"fmt"
	"net"

	"github.com/weaveframe/weave/logging"
)

// ANSI terminal color codes used for banner styling.
const (
	ansiReset = "\033[0m"
	ansiBlue = "\033[34m"
	ansiGreen = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan = "\033[36m"
	ansiBold = "\033[1m"
)

// Version is weave's current release tag.
const Version = "v0.1.0"

// printBanner prints a styled startup banner showing the scheme, host,
// port, and configured limits a server is about to start with.
func printBanner(log *logging.Logger, addr string, cfg Config) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, ""
	}
	if host == "" {
		host = "0.0.0.0"
	}
	scheme := "http"
	if cfg.TLSConfig != nil {
		scheme = "https"
	}

	fmt.Println()
	fmt.Printf("%s%s █ █ ██████ ██████ █ █ ██████%s\n", ansiBold, ansiBlue, ansiReset)
	fmt.Printf("%s █ █ █ █ █ █ █ █ █ █ %s\n", ansiBlue, ansiReset)
	fmt.Printf("%s █ █ █ █ █████ █████ █ █ █ █ █████ %s\n", ansiBlue, ansiReset)
	fmt.Printf("%s ██ ██ █ █ █ ██ ██ █ %s\n", ansiBlue, ansiReset)
	fmt.Printf("%s █ █ ██████ █ █ █ █ ██████%s\n", ansiBlue, ansiReset)
	fmt.Println()
	fmt.Printf("%s%s weave %s %s🧵 an HTTP/1.1, HTTP/2 and HTTP/3 server core%s\n", ansiBold, ansiCyan, Version, ansiYellow, ansiReset)
	fmt.Println("─────────────────────────────────────────────────")
	fmt.Printf("%s 🌎 Host : %s%s://%s:%s%s\n", ansiYellow, ansiGreen, scheme, host, port, ansiReset)
	if cfg.QUICPort > 0 {
		fmt.Printf("%s 📡 QUIC : %s:%d%s\n", ansiYellow, ansiGreen, cfg.QUICPort, ansiReset)
	}
	fmt.Printf("%s 🧱 Max body : %s%d bytes%s\n", ansiYellow, ansiGreen, cfg.MaxBodySize, ansiReset)
	fmt.Println("─────────────────────────────────────────────────")
	fmt.Println()

	if log != nil {
		log.Infof("listening on %s://%s:%s", scheme, host, port)
	}
}
