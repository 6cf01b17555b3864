package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/rabitt1ove/cn-holidays/recordfile"
)

const noticeURL = "https://www.gov.cn/zhengce/content/2022-12/08/content_5730844.htm"

var noticeHTML = `<html><head><meta charset="utf-8"><title>通知</title></head><body>
<div class="pages_content">
<p>国务院办公厅关于2023年部分节假日安排的通知</p>
<p>各省、自治区、直辖市人民政府，国务院各部委、各直属机构：</p>
<p>经国务院批准，现将2023年元旦、春节、清明节、劳动节、端午节、中秋节和国庆节放假调休日期的具体安排通知如下。</p>
<p>一、元旦：2022年12月31日至2023年1月2日放假调休，共3天。</p>
<p>二、春节：1月21日至27日放假调休，共7天。1月28日（星期六）、1月29日（星期日）上班。</p>
<p>三、清明节：4月5日放假，共1天。</p>
<p>四、劳动节：4月29日至5月3日放假调休，共5天。4月23日（星期日）、5月6日（星期六）上班。</p>
<p>五、端午节：6月22日至24日放假调休，共3天。6月25日（星期日）上班。</p>
<p>六、中秋节、国庆节：9月29日至10月6日放假调休，共8天。10月7日（星期六）、10月8日（星期日）上班。</p>
<p>节假日期间，各地区、各部门要妥善安排好值班和安全、保卫、疫情防控等工作。</p>
<p> </p>
</div></body></html>`

func searchJSON(title, link string) string {
	return fmt.Sprintf(`{"code":200,"searchVO":{"totalCount":2,"listVO":[`+
		`{"title":"国务院关于修改《全国年节及纪念日放假办法》的决定","url":"https://www.gov.cn/other.htm"},`+
		`{"title":%q,"url":%q}]}}`, title, link)
}

func newTestFetcher(rt roundTripFunc) *fetcher {
	return newFetcher(testConfig(), &http.Client{Transport: rt}, zap.NewNop())
}

// --- validateURL ---

func TestValidateURL(t *testing.T) {
	t.Parallel()

	allowed := defaultConfig().AllowedHosts
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"allowed notice host", noticeURL, false},
		{"allowed search host", "https://sousuo.www.gov.cn/search-gov/data?q=2023", false},
		{"host case-insensitive", "https://WWW.GOV.CN/zhengce/", false},
		{"blocked evil host", "https://evil.example.com/notice.htm", true},
		{"blocked localhost", "https://localhost/notice.htm", true},
		{"blocked internal IP", "https://192.168.1.1/notice.htm", true},
		{"blocked similar domain", "https://www.gov.cn.evil.com/notice.htm", true},
		{"blocked HTTP", "http://www.gov.cn/zhengce/", true},
		{"blocked FTP", "ftp://www.gov.cn/zhengce/", true},
		{"blocked empty URL", "", true},
		{"blocked no scheme", "www.gov.cn/zhengce/", true},
		{"invalid URL parse", "://invalid", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateURL(%q) error = %v, wantErr = %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

// --- helpers ---

func TestCleanTitleAndYear(t *testing.T) {
	t.Parallel()

	title := cleanTitle(" 国务院办公厅关于<em>2023</em>年部分<em>节假日</em>安排的通知&nbsp;")
	if title != "国务院办公厅关于2023年部分节假日安排的通知" {
		t.Errorf("cleanTitle = %q", title)
	}
	if y := titleYear(title); y != 2023 {
		t.Errorf("titleYear = %d, want 2023", y)
	}
	if y := titleYear("关于节假日安排的通知"); y != 0 {
		t.Errorf("titleYear without year = %d, want 0", y)
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	got, err := resolveURL("https://sousuo.www.gov.cn/search-gov/data?q=2023", "//www.gov.cn/zhengce/a.htm")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.gov.cn/zhengce/a.htm" {
		t.Errorf("resolveURL = %q", got)
	}
}

func TestExtractParagraphs(t *testing.T) {
	t.Parallel()

	ps, err := extractParagraphs(strings.NewReader(noticeHTML))
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 10 {
		t.Fatalf("got %d paragraphs, want 10: %q", len(ps), ps)
	}
	if ps[3] != "一、元旦：2022年12月31日至2023年1月2日放假调休，共3天。" {
		t.Errorf("ps[3] = %q", ps[3])
	}
}

func TestExtractParagraphs_NestedMarkup(t *testing.T) {
	t.Parallel()

	ps, err := extractParagraphs(strings.NewReader(`<p><span>三、清明节：</span><b>4月5日</b>放假，共1天。</p>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || ps[0] != "三、清明节：4月5日放假，共1天。" {
		t.Errorf("paragraphs = %q", ps)
	}
}

func TestDecodeBody_GBK(t *testing.T) {
	t.Parallel()

	const text = "三、清明节：4月5日放假，共1天。"
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(text)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"header charset", encoded, "text/html; charset=GBK"},
		{"meta charset", `<meta http-equiv="Content-Type" content="text/html; charset=gb2312">` + encoded, "text/html"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := io.ReadAll(decodeBody([]byte(tt.body), tt.contentType))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(string(b), text) {
				t.Errorf("decoded = %q", b)
			}
		})
	}
}

func TestDecodeBody_UTF8Passthrough(t *testing.T) {
	t.Parallel()

	b, _ := io.ReadAll(decodeBody([]byte("元旦"), "text/html; charset=utf-8"))
	if string(b) != "元旦" {
		t.Errorf("decoded = %q", b)
	}
}

// --- fetchWithRetry ---

func TestFetchWithRetry_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	f := newTestFetcher(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("User-Agent") != defaultUserAgent {
			t.Errorf("User-Agent = %q", req.Header.Get("User-Agent"))
		}
		switch calls.Add(1) {
		case 1:
			return newHTTPResponse(http.StatusServiceUnavailable, ""), nil
		case 2:
			return nil, errors.New("connection reset")
		default:
			resp := newHTTPResponse(http.StatusOK, "ok")
			resp.Header.Set("Content-Type", "text/plain")
			return resp, nil
		}
	})

	body, ct, err := f.fetchWithRetry(context.Background(), noticeURL, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" || ct != "text/plain" {
		t.Errorf("body = %q, content type = %q", body, ct)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestFetchWithRetry_NonRetryableStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return newHTTPResponse(http.StatusNotFound, ""), nil
	})
	if _, _, err := f.fetchWithRetry(context.Background(), noticeURL, 1024); err == nil {
		t.Fatal("expected an error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestFetchWithRetry_AllAttemptsFail(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return newHTTPResponse(http.StatusTooManyRequests, ""), nil
	})
	_, _, err := f.fetchWithRetry(context.Background(), noticeURL, 1024)
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Errorf("error = %v, want status 429", err)
	}
	if int(calls.Load()) != defaultMaxRetries {
		t.Errorf("calls = %d, want %d", calls.Load(), defaultMaxRetries)
	}
}

func TestFetchWithRetry_SizeLimit(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		return newHTTPResponse(http.StatusOK, strings.Repeat("x", 100)), nil
	})
	body, _, err := f.fetchWithRetry(context.Background(), noticeURL, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) != 10 {
		t.Errorf("len(body) = %d, want 10", len(body))
	}
}

func TestFetchWithRetry_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		t.Error("no request expected after cancellation")
		return newHTTPResponse(http.StatusOK, ""), nil
	})
	if _, _, err := f.fetchWithRetry(ctx, noticeURL, 1024); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// --- findNotice ---

func TestFindNotice(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host != "sousuo.www.gov.cn" {
			t.Errorf("unexpected request to %s", req.URL)
		}
		if !strings.Contains(req.URL.RawQuery, "q=2023") {
			t.Errorf("query %q should carry the year", req.URL.RawQuery)
		}
		return newHTTPResponse(http.StatusOK, searchJSON("国务院办公厅关于<em>2023</em>年部分节假日安排的通知", noticeURL)), nil
	})
	got, err := f.findNotice(context.Background(), 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != noticeURL {
		t.Errorf("findNotice = %q, want %q", got, noticeURL)
	}
}

func TestFindNotice_WrongYear(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		return newHTTPResponse(http.StatusOK, searchJSON("国务院办公厅关于2022年部分节假日安排的通知", noticeURL)), nil
	})
	if _, err := f.findNotice(context.Background(), 2023); !errors.Is(err, errNoNotice) {
		t.Errorf("error = %v, want errNoNotice", err)
	}
}

func TestFindNotice_DisallowedHost(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		return newHTTPResponse(http.StatusOK, searchJSON("国务院办公厅关于2023年部分节假日安排的通知", "https://evil.example.com/notice.htm")), nil
	})
	_, err := f.findNotice(context.Background(), 2023)
	if err == nil || !strings.Contains(err.Error(), "not in the allowed list") {
		t.Errorf("error = %v, want host rejection", err)
	}
}

func TestFindNotice_MalformedResponse(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(func(*http.Request) (*http.Response, error) {
		return newHTTPResponse(http.StatusOK, `{"searchVO": "maintenance"}`), nil
	})
	if _, err := f.findNotice(context.Background(), 2023); err == nil {
		t.Error("expected an error")
	}
}

// --- end to end ---

func newNoticeServer(t *testing.T, gbk bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var searches atomic.Int32
	mux := http.NewServeMux()
	ts := httptest.NewTLSServer(mux)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		year := r.URL.Query().Get("q")
		title := fmt.Sprintf("国务院办公厅关于%s年部分节假日安排的通知", year)
		fmt.Fprintf(w, `{"data":[{"title":%q,"url":"/notice/%s.htm"}]}`, title, year)
	})
	mux.HandleFunc("/notice/2023.htm", func(w http.ResponseWriter, r *http.Request) {
		if !gbk {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, noticeHTML)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		page, err := simplifiedchinese.GBK.NewEncoder().String(strings.Replace(noticeHTML, `charset="utf-8"`, `charset="gbk"`, 1))
		if err != nil {
			t.Error(err)
		}
		io.WriteString(w, page)
	})
	t.Cleanup(ts.Close)
	return ts, &searches
}

func testApp(t *testing.T, ts *httptest.Server) *app {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.SearchURL = ts.URL + "/search?q={year}"
	cfg.ResultPath = []string{"data"}
	cfg.AllowedHosts = map[string]bool{u.Hostname(): true}
	cfg.Output = filepath.Join(t.TempDir(), "holidays.json")
	return &app{cfg: cfg, log: zap.NewNop()}
}

func TestFetch_EndToEnd(t *testing.T) {
	t.Parallel()

	for _, gbk := range []bool{false, true} {

		gbk := gbk
		t.Run(fmt.Sprintf("gbk=%v", gbk), func(t *testing.T) {
			t.Parallel()
			ts, searches := newNoticeServer(t, gbk)
			a := testApp(t, ts)

			if err := a.fetch(context.Background(), ts.Client(), []int{2023}); err != nil {
				t.Fatalf("fetch failed: %v", err)
			}
			records, err := recordfile.ReadFile(a.cfg.Output, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != 7 {
				t.Fatalf("got %d records, want 7: %v", len(records), records)
			}
			if records[0].Year != 2022 || records[6].Name != "中秋节、国庆节" {
				t.Errorf("records = %v", records)
			}

			// Fetching again merges into the same set.
			if err := a.fetch(context.Background(), ts.Client(), []int{2023}); err != nil {
				t.Fatalf("second fetch failed: %v", err)
			}
			again, err := recordfile.ReadFile(a.cfg.Output, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(again) != 7 {
				t.Errorf("refetch changed the record count to %d", len(again))
			}
			if searches.Load() != 2 {
				t.Errorf("searches = %d, want 2", searches.Load())
			}
		})
	}
}

func TestFetch_MissingNotice(t *testing.T) {
	t.Parallel()

	ts, _ := newNoticeServer(t, false)
	a := testApp(t, ts)
	// The server only publishes the 2023 notice page.
	err := a.fetch(context.Background(), ts.Client(), []int{2023, 2024})
	if err == nil || !strings.Contains(err.Error(), "year 2024") {
		t.Errorf("error = %v, want a year 2024 failure", err)
	}
}
