package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"

	"github.com/namecoin/bcresolve/api"
	"github.com/namecoin/bcresolve/log"
)

// NewQueryCommand creates the "query" subcommand: a one-shot client
// against a running bcresolve query API.
//
// Adapted from blocky's cmd/query.go, retargeted at api.QueryRequest/
// api.QueryResult and the narrower resolve Kind/Address/Domain/
// Preference/Exchange result shape.
func NewQueryCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "query <name>",
		Args:  cobra.ExactArgs(1),
		Short: "resolves a .bit domain via a running bcresolve query API",
		Run:   query,
	}

	c.Flags().StringP("type", "t", "A", "query type (A, AAAA, CNAME, TXT, MX)")

	return c
}

func query(cmd *cobra.Command, args []string) {
	typeFlag, _ := cmd.Flags().GetString("type")

	if dns.StringToType[typeFlag] == dns.TypeNone {
		log.Log().Fatalf("unknown query type '%s'", typeFlag)

		return
	}

	apiRequest := api.QueryRequest{Name: args[0], Type: typeFlag}

	jsonValue, err := json.Marshal(apiRequest)
	if err != nil {
		log.Log().Fatalf("can't encode request: %s", err)

		return
	}

	resp, err := http.Post(apiURL(api.PathResolvePath), "application/json", bytes.NewReader(jsonValue))
	if err != nil {
		log.Log().Fatalf("can't reach query API: %s", err)

		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResult api.ErrorResult

		body, _ := io.ReadAll(resp.Body)
		if jsonErr := json.Unmarshal(body, &errResult); jsonErr == nil && errResult.Error != "" {
			log.Log().Fatalf("NOK: %s %s", resp.Status, errResult.Error)
		} else {
			log.Log().Fatalf("NOK: %s %s", resp.Status, string(body))
		}

		return
	}

	var result api.QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Log().Fatalf("can't read response: %s", err)

		return
	}

	log.Log().Infof("query result for '%s' (%s):", apiRequest.Name, apiRequest.Type)

	switch result.Kind {
	case "address":
		log.Log().Infof("\taddress: %s", result.Address)
	case "mx":
		log.Log().Infof("\tpreference: %d exchange: %s", result.Preference, result.Exchange)
	default:
		log.Log().Infof("\tdomain: %s", result.Domain)
	}
}
