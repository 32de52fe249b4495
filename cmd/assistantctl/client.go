package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Minute)
}

func printJSON(out io.Writer, body []byte) error {
	var pretty json.RawMessage
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Fprintln(out, string(body))
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

func runGenerate(api, user, questionType, jobTitle, skill string, n int, out io.Writer) error {
	payload := map[string]any{
		"userId":       user,
		"questionType": questionType,
		"jobTitle":     jobTitle,
		"skillToTest":  skill,
		"n":            n,
	}
	resp, err := newClient(api).R().SetBody(payload).Post("/api/questions")
	if err != nil {
		return err
	}
	// 409 still carries the accepted prefix; print it alongside the error.
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusConflict {
		return fmt.Errorf("generate failed: %s: %s", resp.Status(), resp.String())
	}
	if err := printJSON(out, resp.Body()); err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusConflict {
		return fmt.Errorf("batch incomplete: generation attempts exhausted")
	}
	return nil
}

func runGet(api, questionID string, out io.Writer) error {
	resp, err := newClient(api).R().Get("/api/questions/" + questionID)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("get failed: %s: %s", resp.Status(), resp.String())
	}
	return printJSON(out, resp.Body())
}

func runTip(api, questionID string, out io.Writer) error {
	resp, err := newClient(api).R().Post("/api/questions/" + questionID + "/tips")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("tip failed: %s: %s", resp.Status(), resp.String())
	}
	return printJSON(out, resp.Body())
}
