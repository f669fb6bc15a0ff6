package dhs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/sources"
)

const rawExport = `License #,License Holder Name,License Type,License Status,Address,City,State,Zip,County
1000123,Sunshine Child Care Center,Child Care Center,Active,123 Main St,Saint Paul,MN,55101,Ramsey
1000456,Mary Johnson,Family Child Care,Active,456 Oak Ave,Minneapolis,MN,55401,Hennepin
`

// writeHAR captures a POST export request against url into a temp HAR file.
func writeHAR(t *testing.T, url string) string {
	t.Helper()
	har := fmt.Sprintf(`{"log":{"entries":[{
		"request":{
			"method":"POST",
			"url":%q,
			"headers":[{"name":"User-Agent","value":"Mozilla/5.0"},{"name":"Content-Type","value":"application/x-www-form-urlencoded"}],
			"cookies":[{"name":"ASP.NET_SessionId","value":"sess42"}],
			"postData":{"text":"__EVENTTARGET=csvdownload"}
		},
		"response":{"headers":[{"name":"Content-Type","value":"text/csv"}],"content":{"mimeType":"text/csv"}}
	}]}}`, url)
	path := filepath.Join(t.TempDir(), "export.har")
	require.NoError(t, os.WriteFile(path, []byte(har), 0o644))
	return path
}

func writeZips(t *testing.T, zips ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zips.txt")
	body := ""
	for _, z := range zips {
		body += z + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExportSourceFetchURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, rawExport)
	}))
	defer server.Close()

	rawDir := t.TempDir()
	src := NewExportSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithExportURL(server.URL),
		sources.WithRawDir(rawDir),
	)
	require.NoError(t, err)

	assert.Equal(t, sources.DHSExportID, src.ID())
	assert.Equal(t, 2, src.Registry().Len())

	p, err := src.Registry().FindByLicense("1000123")
	require.NoError(t, err)
	assert.Equal(t, "Sunshine Child Care Center", p.Name)

	raw, err := os.ReadFile(filepath.Join(rawDir, "mn_ccap_raw.csv"))
	require.NoError(t, err)
	assert.Equal(t, rawExport, string(raw))
}

func TestExportSourceFetchHAR(t *testing.T) {
	var gotMethod, gotCookie, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		if c, err := r.Cookie("ASP.NET_SessionId"); err == nil {
			gotCookie = c.Value
		}
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		fmt.Fprint(w, rawExport)
	}))
	defer server.Close()

	src := NewExportSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithHARFile(writeHAR(t, server.URL)),
		sources.WithRawDir(t.TempDir()),
	)
	require.NoError(t, err)

	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "sess42", gotCookie)
	assert.Equal(t, "__EVENTTARGET=csvdownload", gotBody)
	assert.Equal(t, 2, src.Registry().Len())
}

func TestExportSourceLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rawExport)
	}))
	defer server.Close()

	src := NewExportSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithExportURL(server.URL),
		sources.WithRawDir(t.TempDir()),
		sources.WithLimit(1),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Registry().Len())
}

func TestExportSourceNeedsURLOrHAR(t *testing.T) {
	src := NewExportSource(nil)
	err := src.Fetch(context.Background())
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBatchSourceFetch(t *testing.T) {
	var postedZips []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zip := r.URL.Query().Get("z")
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `<html><form>
				<input name="__VIEWSTATE" value="vs-%s" />
				<input name="__VIEWSTATEGENERATOR" value="gen" />
				<input name="__EVENTVALIDATION" value="ev-%s" />
			</form></html>`, zip, zip)
		case http.MethodPost:
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "csvdownload", r.PostForm.Get("__EVENTTARGET"))
			assert.Equal(t, "vs-"+zip, r.PostForm.Get("__VIEWSTATE"))
			postedZips = append(postedZips, zip)
			fmt.Fprintf(w, "License #,License Holder Name,Zip\n%s01,Provider in %s,%s\n", zip, zip, zip)
		}
	}))
	defer server.Close()

	rawDir := t.TempDir()
	src := NewBatchSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithHARFile(writeHAR(t, server.URL+"/Results.aspx?t=CCC")),
		sources.WithZipCodes(writeZips(t, "55101", "55401")),
		sources.WithRawDir(rawDir),
		sources.WithSleep(time.Millisecond),
	)
	require.NoError(t, err)

	assert.Equal(t, sources.DHSBatchID, src.ID())
	assert.Equal(t, []string{"55101", "55401"}, postedZips)
	assert.Equal(t, 2, src.Registry().Len())

	_, err = os.Stat(filepath.Join(rawDir, "mn_ccap_raw_55101.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(rawDir, "mn_ccap_raw_55401.csv"))
	assert.NoError(t, err)
}

func TestBatchSourceContinuesPastFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zip := r.URL.Query().Get("z")
		if zip == "55101" {
			// No hidden fields on this page, so the export cannot be replayed.
			fmt.Fprint(w, `<html><body>Service temporarily unavailable</body></html>`)
			return
		}
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `<html><form>
				<input name="__VIEWSTATE" value="vs" />
				<input name="__EVENTVALIDATION" value="ev" />
			</form></html>`)
		case http.MethodPost:
			fmt.Fprintf(w, "License #,License Holder Name\n%s01,Provider in %s\n", zip, zip)
		}
	}))
	defer server.Close()

	src := NewBatchSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithHARFile(writeHAR(t, server.URL+"/Results.aspx")),
		sources.WithZipCodes(writeZips(t, "55101", "55401")),
		sources.WithRawDir(t.TempDir()),
		sources.WithSleep(0),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Registry().Len())
}

func TestBatchSourceAllZipsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer server.Close()

	src := NewBatchSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithHARFile(writeHAR(t, server.URL+"/Results.aspx")),
		sources.WithZipCodes(writeZips(t, "55101")),
		sources.WithRawDir(t.TempDir()),
		sources.WithSleep(0),
	)
	require.Error(t, err)
	var fetchErr *errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, []string{"55101"}, fetchErr.Zips)
}

func TestBatchSourceHTMLMode(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("testdata", "results.html"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(page)
	}))
	defer server.Close()

	rawDir := t.TempDir()
	src := NewBatchSource(nil)
	err = src.Fetch(context.Background(),
		sources.WithHARFile(writeHAR(t, server.URL+"/Results.aspx")),
		sources.WithZipCodes(writeZips(t, "55101")),
		sources.WithRawDir(rawDir),
		sources.WithHTMLMode(true),
		sources.WithSleep(0),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Registry().Len())

	_, err = os.Stat(filepath.Join(rawDir, "mn_ccap_raw_55101.html"))
	assert.NoError(t, err)
}

func TestHTMLSourceFetch(t *testing.T) {
	src := NewHTMLSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithHTMLFile(filepath.Join("testdata", "results.html")),
	)
	require.NoError(t, err)

	assert.Equal(t, sources.DHSHTMLID, src.ID())
	assert.Equal(t, 2, src.Registry().Len())

	p, err := src.Registry().FindByLicense("1000123")
	require.NoError(t, err)
	assert.Equal(t, "Sunshine Child Care Center", p.Name)
	assert.Equal(t, "Saint Paul", p.City)
}

func TestHTMLSourceMissingFile(t *testing.T) {
	src := NewHTMLSource(nil)
	err := src.Fetch(context.Background(),
		sources.WithHTMLFile(filepath.Join("testdata", "missing.html")),
	)
	require.Error(t, err)
}
