package fetchcore

import (
	"testing"
	"time"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/siteconfig"
)

func TestOkResult_CarriesRawHTMLOnlyWhenRequested(t *testing.T) {
	ext := &models.Extraction{MethodTag: models.MethodReadability, TextContent: "body"}
	started := time.Now()

	withRaw := okResult("https://example.com", started, 200, ext, true, "<html></html>")
	if withRaw.RawHTML == "" {
		t.Error("expected RawHTML to be populated when requested")
	}

	withoutRaw := okResult("https://example.com", started, 200, ext, false, "<html></html>")
	if withoutRaw.RawHTML != "" {
		t.Error("expected RawHTML to stay empty when not requested")
	}

	if !withRaw.Success || withRaw.Ok != ext || withRaw.ExtractionMethod != models.MethodReadability {
		t.Errorf("unexpected result shape: %+v", withRaw)
	}
}

func TestErrResult_MarksFailureAndCarriesError(t *testing.T) {
	started := time.Now()
	ferr := models.NewFetchError(models.ErrTimeout, "deadline exceeded")

	res := errResult("https://example.com", started, ferr)
	if res.Success {
		t.Error("expected Success=false")
	}
	if res.Err != ferr {
		t.Error("expected Err to be the passed-in FetchError")
	}
	if res.Ok != nil {
		t.Error("expected Ok to remain nil on an error result")
	}
}

func TestCore_SiteForIsNilSafe(t *testing.T) {
	c := New(nil)
	if got := c.siteFor("https://example.com/a"); got != (siteconfig.Entry{}) {
		t.Errorf("expected zero-value Entry for a nil site table, got %+v", got)
	}
}

func TestCore_SiteForLooksUpConfiguredEntry(t *testing.T) {
	table := siteconfig.New(map[string]siteconfig.Entry{
		"example.com": {PreferNextData: true},
	})
	c := New(table)
	got := c.siteFor("https://example.com/a")
	if !got.PreferNextData {
		t.Errorf("expected configured entry to be returned, got %+v", got)
	}
}
