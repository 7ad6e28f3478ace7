package saramin

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func stubWithConditions(conds ...string) PostingStub {
	return PostingStub{Title: "t", Link: "https://x", Requirements: conds}
}

func TestDefaultStubFilter(t *testing.T) {
	tests := []struct {
		name string
		stub PostingStub
		keep bool
	}{
		{"experience only", stubWithConditions("경력 3년 이상", "서울"), false},
		{"experience or entry", stubWithConditions("신입·경력", "학력무관"), true},
		{"entry level", stubWithConditions("신입", "서울"), true},
		{"no experience mention", stubWithConditions("서울 강남구", "정규직"), true},
		{"experience but intern ok", stubWithConditions("경력", "인턴 가능"), true},
		{"experience but 무관", stubWithConditions("경력무관"), true},
		{"no conditions at all", stubWithConditions(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.keep, DefaultStubFilter(tt.stub))
		})
	}
}

const listingHTML = `<div class="list_recruiting">
  <div class="list_item">
    <div class="notification_info">
      <div class="job_tit"><a href="/zf_user/jobs/relay/view?rec_idx=100">백엔드 엔지니어</a></div>
    </div>
    <div class="job_sector"><span>Go</span><span>Kubernetes</span></div>
    <div class="job_condition"><span>신입·경력</span><span>서울</span></div>
    <div class="job_date"><span class="date">~ 08.31(일)</span></div>
  </div>
  <div class="list_item">
    <div class="notification_info">
      <div class="job_tit"><a href="/zf_user/jobs/relay/view?rec_idx=101">시니어 데이터 엔지니어</a></div>
    </div>
    <div class="job_condition"><span>경력 5년 이상</span><span>서울</span></div>
  </div>
  <div class="list_item">
    <div class="notification_info">
      <div class="job_tit"><a>제목 없는 항목</a></div>
    </div>
  </div>
</div>`

func TestParsePostingList(t *testing.T) {
	stubs := parsePostingList(listingHTML, DefaultBaseURL)
	require.Len(t, stubs, 2, "row without link is dropped")

	first := stubs[0]
	require.Equal(t, "백엔드 엔지니어", first.Title)
	require.True(t, strings.HasPrefix(first.Link, "https://www.saramin.co.kr/"), "link must be absolute, got %s", first.Link)
	require.Equal(t, []string{"Go", "Kubernetes"}, first.TechStack)
	require.Equal(t, []string{"신입·경력", "서울"}, first.Requirements)
	require.NotEmpty(t, first.Deadline)
}

func TestParsePostingListFilterScenario(t *testing.T) {
	raw := parsePostingList(listingHTML, DefaultBaseURL)
	var filtered []PostingStub
	for _, s := range raw {
		if DefaultStubFilter(s) {
			filtered = append(filtered, s)
		}
	}
	// one raw stub mentions 경력 without 신입/무관/인턴, so filtered < raw
	require.Less(t, len(filtered), len(raw))
	require.Len(t, filtered, 1)
	require.Equal(t, "백엔드 엔지니어", filtered[0].Title)
}

// fakeGetter serves one canned body per call in sequence; extra calls get
// the last body.
type fakeGetter struct {
	bodies []string
	calls  int
}

func (f *fakeGetter) Get(_ string, _ map[string]string) ([]byte, int, error) {
	i := f.calls
	f.calls++
	if i >= len(f.bodies) {
		i = len(f.bodies) - 1
	}
	return []byte(f.bodies[i]), 200, nil
}

func testClient(g PageGetter) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Browser: g,
		Limiter: rate.NewLimiter(rate.Inf, 1),
		Timeout: time.Second,
	}
}

// fullPage renders n keepable list items so the page counts as full.
func fullPage(n int) string {
	var sb strings.Builder
	sb.WriteString(`<div class="list_recruiting">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `<div class="list_item">
  <div class="notification_info">
    <div class="job_tit"><a href="/zf_user/jobs/view?rec_idx=%d">백엔드 엔지니어 %d</a></div>
  </div>
  <div class="job_condition"><span>신입</span></div>
</div>`, i, i)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func TestCompanyPostingsStopsAtPageCap(t *testing.T) {
	g := &fakeGetter{bodies: []string{fullPage(minPerFullPage)}}
	c := testClient(g)

	stubs, err := c.CompanyPostings(context.Background(), "1234567890")
	require.NoError(t, err)
	require.Equal(t, maxListingPages, g.calls, "every page is full, so the loop must stop at the cap")
	require.Len(t, stubs, maxListingPages*minPerFullPage)
}

func TestCompanyPostingsStopsOnShortPage(t *testing.T) {
	g := &fakeGetter{bodies: []string{fullPage(minPerFullPage), fullPage(minPerFullPage - 3)}}
	c := testClient(g)

	stubs, err := c.CompanyPostings(context.Background(), "1234567890")
	require.NoError(t, err)
	require.Equal(t, 2, g.calls, "a short page signals the last page")
	require.Len(t, stubs, minPerFullPage+minPerFullPage-3)
}

func TestCompanyPostingsStopsOnEmptyPage(t *testing.T) {
	g := &fakeGetter{bodies: []string{fullPage(minPerFullPage), `<div class="list_recruiting"></div>`}}
	c := testClient(g)

	stubs, err := c.CompanyPostings(context.Background(), "1234567890")
	require.NoError(t, err)
	require.Equal(t, 2, g.calls)
	require.Len(t, stubs, minPerFullPage)
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct{ href, want string }{
		{"/zf_user/jobs/view?rec_idx=1", "https://www.saramin.co.kr/zf_user/jobs/view?rec_idx=1"},
		{"https://other.example.com/a", "https://other.example.com/a"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, absoluteURL(DefaultBaseURL, tt.href))
	}
}
