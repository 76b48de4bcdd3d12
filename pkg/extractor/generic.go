package extractor

import (
	"regexp"
	"strings"
)

// 办公软件自动生成的占位标题，视为没有内容
var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(slide|diapositivo|folie)\s*\d*$`),
	regexp.MustCompile(`^(sheet|planilha|plan|tabelle|feuil|hoja)\s*\d*$`),
	regexp.MustCompile(`^(book|pasta|mappe|classeur|libro)\s*\d*$`),
	regexp.MustCompile(`^(document|documento|dokument|doc)\s*\d*$`),
	regexp.MustCompile(`^(presentation|apresentação|apresentacao|präsentation)\s*\d*$`),
	regexp.MustCompile(`^(untitled|sem título|sem titulo|unbenannt|sans titre)(\s*\d*|\s*document)?$`),
	regexp.MustCompile(`^(title|título|titulo|subtitle)\s*\d*$`),
	regexp.MustCompile(`^(click|clique|klicken)\b.*\b(title|título|titel|subtitle|subtítulo|text|texto)\b.*$`),
	regexp.MustCompile(`^microsoft (word|excel|powerpoint) - .*$`),
	regexp.MustCompile(`^(documento_word|documento_pdf|planilha|apresentacao|dados_csv|arquivo)$`),
	regexp.MustCompile(`^[\s\p{P}\p{S}]*$`),
}

// IsGeneric 判断文本是否为无意义的占位标题
func IsGeneric(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return true
	}
	for _, p := range genericPatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}
