// hooksign signs a payload the way a trusted publisher would, emitting the
// three security headers the ingest endpoint expects. Useful for smoke
// testing a deployment or wiring up a new publisher.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/quillcms/hookauth/internal/hmacsig"
	"github.com/quillcms/hookauth/internal/webhook"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("hooksign", flag.ExitOnError)
	apiKey := fs.String("key", os.Getenv("HOOKAUTH_API_KEY"), "API key (default: $HOOKAUTH_API_KEY)")
	secret := fs.String("secret", os.Getenv("HOOKAUTH_SHARED_SECRET"), "Shared secret (default: $HOOKAUTH_SHARED_SECRET)")
	file := fs.String("file", "", "Payload file (default: stdin)")
	url := fs.String("url", "", "POST the signed payload to this URL instead of printing headers")
	tsOverride := fs.String("timestamp", "", "Timestamp header override (epoch milliseconds; for testing)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *apiKey == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "hooksign: --key and --secret are required (or set HOOKAUTH_API_KEY / HOOKAUTH_SHARED_SECRET)")
		return 1
	}

	body, err := readPayload(*file, stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hooksign: %v\n", err)
		return 1
	}

	timestamp := *tsOverride
	if timestamp == "" {
		timestamp = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	headers := buildHeaders(*apiKey, []byte(*secret), timestamp, body)

	if *url == "" {
		for _, name := range []string{webhook.HeaderAPIKey, webhook.HeaderTimestamp, webhook.HeaderSignature} {
			fmt.Fprintf(stdout, "%s: %s\n", name, headers.Get(name))
		}
		return 0
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hooksign: %v\n", err)
		return 1
	}
	req.Header = headers
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hooksign: request failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Fprintf(stdout, "%s\n%s", resp.Status, respBody)
	if resp.StatusCode >= 300 {
		return 1
	}
	return 0
}

// buildHeaders produces the three security headers for a signed submission.
func buildHeaders(apiKey string, secret []byte, timestamp string, body []byte) http.Header {
	h := http.Header{}
	h.Set(webhook.HeaderAPIKey, apiKey)
	h.Set(webhook.HeaderTimestamp, timestamp)
	h.Set(webhook.HeaderSignature, hmacsig.Sign(secret, timestamp, body))
	return h
}

func readPayload(file string, stdin io.Reader) ([]byte, error) {
	if file == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}
