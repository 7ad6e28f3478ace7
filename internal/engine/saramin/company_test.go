package saramin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"(주)데이원컴퍼니", "데이원컴퍼니"},
		{"주식회사 데이원컴퍼니", "데이원컴퍼니"},
		{"㈜데이원컴퍼니", "데이원컴퍼니"},
		{"Day1 Company (데이원)", "day1company"},
		{"  Toss  ", "toss"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeCompanyName(tt.in))
	}
}

func TestNormalizeCompanyNameIdempotent(t *testing.T) {
	inputs := []string{"(주)데이원컴퍼니", "주식회사 카카오", "Day1 Company (Seoul)", "토스"}
	for _, in := range inputs {
		once := NormalizeCompanyName(in)
		require.Equal(t, once, NormalizeCompanyName(once), "normalize must be idempotent for %q", in)
	}
}

const companySearchHTML = `<html><body>
<div class="company_search_list">
  <a href="/zf_user/company-info/view?csn=AAA111">데이원컴퍼니 자회사</a>
  <a href="/zf_user/company-info/view?csn=BBB222">데이원컴퍼니</a>
  <a href="/zf_user/company-info/view?csn=CCC333">무관한 회사</a>
</div>
</body></html>`

func TestFindCompanyCodeFirstMatchWins(t *testing.T) {
	// both of the first two anchors match by substring; document order decides
	code := findCompanyCode(companySearchHTML, NormalizeCompanyName("(주)데이원컴퍼니"))
	require.Equal(t, "AAA111", code)
}

func TestFindCompanyCodeNoMatch(t *testing.T) {
	code := findCompanyCode(companySearchHTML, NormalizeCompanyName("존재하지않는회사"))
	require.Equal(t, "", code)
}

func TestFindCompanyCodeIgnoresAnchorsWithoutCode(t *testing.T) {
	html := `<a href="/zf_user/company-info/view">데이원컴퍼니</a>
<a href="/zf_user/company-info/view?csn=XYZ">데이원컴퍼니</a>`
	code := findCompanyCode(html, "데이원컴퍼니")
	require.Equal(t, "XYZ", code)
}
