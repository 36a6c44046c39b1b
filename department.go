package main

import "strings"

// This file infers a medical department tag from a facility's display name.
// Government registry records carry no structured specialty field, but
// Korean clinic names almost always embed one ("튼튼정형외과의원"), so a
// keyword scan recovers it well enough for filtering.

// departmentGeneral is the fallback tag when no specialty keyword matches.
const departmentGeneral = "일반"

// departmentKeywords is scanned in order and the first match wins. The order
// is load-bearing: compound specialties must precede any keyword they
// contain ("정형외과" before "외과"), otherwise the shorter keyword would
// shadow the more specific one.
var departmentKeywords = []string{
	"소아청소년과",
	"소아과",
	"정형외과",
	"이비인후과",
	"산부인과",
	"정신건강의학과",
	"재활의학과",
	"가정의학과",
	"비뇨기과",
	"한의원",
	"내과",
	"피부과",
	"안과",
	"치과",
	"외과",
	"신경과",
}

// departmentAliases maps matched keywords onto their canonical tag where the
// two differ (older registry names still say 소아과).
var departmentAliases = map[string]string{
	"소아과": "소아청소년과",
}

// classifyDepartment returns the department tag for a facility name, or the
// generic tag when no keyword matches. Whitespace inside the name is ignored
// so "서울 정형외과" and "서울정형외과" classify identically.
func classifyDepartment(facilityName string) string {
	compact := strings.Join(strings.Fields(facilityName), "")
	for _, keyword := range departmentKeywords {
		if strings.Contains(compact, keyword) {
			if canonical, ok := departmentAliases[keyword]; ok {
				return canonical
			}
			return keyword
		}
	}
	return departmentGeneral
}
