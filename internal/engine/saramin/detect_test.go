package saramin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectViewURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{
			"https://www.saramin.co.kr/zf_user/jobs/relay/view?view_type=list&rec_idx=45678",
			"https://www.saramin.co.kr/zf_user/jobs/view?rec_idx=45678",
		},
		{
			// already direct, returned unchanged
			"https://www.saramin.co.kr/zf_user/jobs/view?rec_idx=45678",
			"https://www.saramin.co.kr/zf_user/jobs/view?rec_idx=45678",
		},
		{
			// relay without an id cannot be rewritten
			"https://www.saramin.co.kr/zf_user/jobs/relay/view?view_type=list",
			"https://www.saramin.co.kr/zf_user/jobs/relay/view?view_type=list",
		},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, DirectViewURL(DefaultBaseURL, tt.in))
	}
}

func TestDetectApplicationRouteInternal(t *testing.T) {
	html := `<html><body><div class="jv_apply"><button class="btn_apply">입사지원</button></div></body></html>`
	d := DetectApplicationRoute(html)
	require.False(t, d.IsExternal)
	require.Empty(t, d.ExternalURL)
}

func TestDetectApplicationRouteStructuredHref(t *testing.T) {
	html := `<html><body>
<div class="jv_apply">
  <button class="btn_apply" title="홈페이지 지원" data-href="https://careers.example.com/jobs/1">홈페이지 지원</button>
</div>
<div data-href="https://tracker.example.com/should-not-win"></div>
</body></html>`
	d := DetectApplicationRoute(html)
	require.True(t, d.IsExternal)
	require.Equal(t, "https://careers.example.com/jobs/1", d.ExternalURL)
}

func TestDetectApplicationRouteGenericRegexFallback(t *testing.T) {
	html := `<html><body>
<script>try_apply_homepage(123);</script>
<div class="somewhere" data-href="https://careers.example.com"></div>
</body></html>`
	d := DetectApplicationRoute(html)
	require.True(t, d.IsExternal)
	require.Equal(t, "https://careers.example.com", d.ExternalURL)
}

func TestDetectApplicationRouteMarkerWithoutURL(t *testing.T) {
	// markers present but no extractable URL degrades to internal
	html := `<html><body><script>homepage_apply();</script></body></html>`
	d := DetectApplicationRoute(html)
	require.False(t, d.IsExternal)
}
