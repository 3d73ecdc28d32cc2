// Command radius-query sends one RADIUS request through pkg/radclient's
// scheduler and prints the result. Attributes are read from stdin in
// "Name = value" form.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/radqueue/pkg/config"
	"github.com/vitalvas/radqueue/pkg/dictionary"
	"github.com/vitalvas/radqueue/pkg/log"
	"github.com/vitalvas/radqueue/pkg/packet"
	"github.com/vitalvas/radqueue/pkg/radclient"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML or XML client configuration file")
	xmlFormat := flag.Bool("xml", false, "Parse -config as the legacy XML schema instead of YAML")
	code := flag.String("code", "access-request", "Request code: access-request or accounting-request")
	timeout := flag.Duration("timeout", 10*time.Second, "How long to wait for a reply before giving up")
	worker := flag.Int("worker", 0, "Reactor worker index to submit the query to")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -config <file> [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nAttributes are read from stdin, one per line in format:\n")
		fmt.Fprintf(os.Stderr, "  Attribute-Name = value\n")
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  echo 'User-Name = testuser' | %s -config radclient.yaml\n", os.Args[0])
	}

	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		os.Exit(1)
	}

	requestCode, err := parseCode(*code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var cfg *config.Config
	if *xmlFormat {
		cfg, err = config.LoadXML(*configPath)
	} else {
		cfg, err = config.LoadYAML(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	dict, err := dictionary.NewDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load dictionary: %v\n", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	attributes, err := parseAttributes(scanner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parse attributes: %v\n", err)
		os.Exit(1)
	}

	req, err := buildRequest(requestCode, dict, attributes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: build request: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	settings := cfg.ToSettings()
	settings.Logger = log.NewLogger(os.Stderr, *logLevel)

	client, err := radclient.New(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close(context.Background())

	for _, srv := range cfg.Servers {
		if srv.Disabled {
			continue
		}
		if _, err := client.AddServer(srv.ToServerSettings()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: add server %s: %v\n", srv.Addr, err)
			os.Exit(1)
		}
	}

	type result struct {
		response []byte
		err      error
	}
	done := make(chan result, 1)

	_, err = client.Query(ctx, radclient.WorkerHandle(*worker), radclient.AUTO, req,
		func(_ *radclient.Query, response []byte, err error, _ any) {
			done <- result{response, err}
		}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: submit query: %v\n", err)
		os.Exit(1)
	}

	select {
	case r := <-done:
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", r.err)
			os.Exit(1)
		}
		printResponse(r.response, dict)
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "Request timed out")
		os.Exit(1)
	}
}

func parseCode(s string) (packet.Code, error) {
	switch strings.ToLower(s) {
	case "access-request":
		return packet.CodeAccessRequest, nil
	case "accounting-request":
		return packet.CodeAccountingRequest, nil
	default:
		return 0, fmt.Errorf("unknown code %q", s)
	}
}

func parseAttributes(scanner *bufio.Scanner) (map[string]string, error) {
	attributes := make(map[string]string)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid attribute format: %q (expected 'Name = value')", line)
		}

		attributes[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	return attributes, nil
}

// buildRequest encodes each stdin attribute according to its dictionary
// data type. It does not implement RFC 2865 §5.2 User-Password
// encryption -- that needs the Request Authenticator, which sign()
// generates later inside pkg/radclient -- so a User-Password value is
// sent as plain bytes, suitable only against a test server.
func buildRequest(code packet.Code, dict *dictionary.Dictionary, attributes map[string]string) ([]byte, error) {
	pkt := packet.NewWithDictionary(code, 0, dict)

	for name, value := range attributes {
		def, ok := dict.LookupStandardByName(name)
		if !ok {
			return nil, fmt.Errorf("attribute %q not found in dictionary", name)
		}

		encoded, err := encodeValue(def.DataType, value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}

		pkt.AddAttribute(packet.NewAttribute(uint8(def.ID), encoded))
	}

	return pkt.Encode()
}

func encodeValue(dt dictionary.DataType, value string) ([]byte, error) {
	switch dt {
	case dictionary.DataTypeInteger:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %w", err)
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(n))
		return buf, nil

	case dictionary.DataTypeIPAddr:
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("not an IPv4 address")
		}
		return ip.To4(), nil

	default:
		return []byte(value), nil
	}
}

func printResponse(response []byte, dict *dictionary.Dictionary) {
	pkt, err := packet.Decode(response)
	if err != nil {
		fmt.Printf("Received undecodable response (%d bytes): %v\n", len(response), err)
		return
	}

	fmt.Printf("Received %s\n", pkt.Code.String())

	for _, attr := range pkt.Attributes {
		fmt.Printf("\t%s = %s\n", dict.GetAttributeNameByType(attr.Type), attr.String())
	}

	switch pkt.Code {
	case packet.CodeAccessAccept, packet.CodeAccountingResponse:
		os.Exit(0)
	default:
		os.Exit(1)
	}
}
