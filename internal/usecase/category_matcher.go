package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/prodscan/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s+]`)

// Scoring weights for phone detection
const (
	modelCoverageWeight = 70.0 // Max score from catalog model token coverage
	brandMatchBonus     = 30.0 // Brand equals a catalog brand
	fuzzyWeightFactor   = 0.8  // Fuzzy token matches count for 80% of an exact one
)

// phoneKeywords mark a product as a phone once the brand is a known phone maker
var phoneKeywords = map[string]bool{
	"phone": true, "smartphone": true, "iphone": true, "pixel": true,
	"xperia": true, "redmi": true, "poco": true, "razr": true, "zenfone": true,
}

// matchStopWords are dropped before scoring
var matchStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "with": true, "for": true, "by": true, "new": true,
	"mobile": true, "gb": true, "tb": true,
}

// CategoryConfig holds configuration for the category matcher
type CategoryConfig struct {
	MinConfidenceThreshold float64
	EnableFuzzyMatching    bool
	FuzzyEditDistance      int
	EnableDebugLogging     bool
}

// PhoneMatch is the best catalog entry for a product and its confidence score (0-100)
type PhoneMatch struct {
	Phone         domain.PhoneModel
	Score         float64
	MatchedTokens []string
}

// CategoryMatcher decides whether a recognized product is a phone listed in the catalog
type CategoryMatcher struct {
	catalog                []domain.PhoneModel
	brands                 map[string]string
	minConfidenceThreshold float64
	enableFuzzyMatching    bool
	fuzzyEditDistance      int
	enableDebugLogging     bool
}

// NewCategoryMatcher creates a matcher over the given catalog
func NewCategoryMatcher(catalog []domain.PhoneModel, config CategoryConfig) *CategoryMatcher {
	threshold := config.MinConfidenceThreshold
	if threshold <= 0 {
		threshold = 70.0 // Default 70% threshold
	}

	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1 // Default edit distance of 1
	}

	brands := make(map[string]string, len(catalog))
	for _, phone := range catalog {
		brands[strings.ToLower(phone.Brand)] = phone.Brand
	}

	return &CategoryMatcher{
		catalog:                catalog,
		brands:                 brands,
		minConfidenceThreshold: threshold,
		enableFuzzyMatching:    config.EnableFuzzyMatching,
		fuzzyEditDistance:      fuzzyDist,
		enableDebugLogging:     config.EnableDebugLogging,
	}
}

// IsPhone reports whether the product is recognised as a catalog phone
func (m *CategoryMatcher) IsPhone(productName, brand string) bool {
	_, ok := m.Match(productName, brand)
	return ok
}

// CanonicalBrand returns the catalog spelling of brand, or "" when it is not a phone maker
func (m *CategoryMatcher) CanonicalBrand(brand string) string {
	return m.brands[strings.ToLower(strings.TrimSpace(brand))]
}

// Match finds the best catalog phone for the product.
// The bool is false when the best score stays below the confidence threshold and no
// phone keyword from a known phone brand is present.
func (m *CategoryMatcher) Match(productName, brand string) (PhoneMatch, bool) {
	if productName == "" || productName == domain.FallbackUnknown {
		return PhoneMatch{}, false
	}

	productTokens := tokenize(productName)
	if len(productTokens) == 0 {
		return PhoneMatch{}, false
	}

	knownBrand := m.CanonicalBrand(brand)
	if knownBrand == "" {
		// The brand is often only mentioned inside the product name
		for _, token := range productTokens {
			if b, ok := m.brands[token]; ok {
				knownBrand = b
				break
			}
		}
	}

	var best PhoneMatch
	highestScore := -1.0

	for _, phone := range m.catalog {
		score, matched := m.calculateMatchScore(productTokens, knownBrand, phone)
		if score > highestScore {
			highestScore = score
			best = PhoneMatch{Phone: phone, Score: score, MatchedTokens: matched}
		}
	}

	if m.enableDebugLogging {
		log.Printf("[CATEGORY] %q (brand: %q) best: %q score: %.1f matched: %v",
			productName, brand, best.Phone.String(), best.Score, best.MatchedTokens)
	}

	if best.Score >= m.minConfidenceThreshold {
		return best, true
	}

	// Phones missing from the catalog still count when a phone maker sells them as one
	if knownBrand != "" && hasPhoneKeyword(productTokens) {
		return PhoneMatch{
			Phone: domain.PhoneModel{Brand: knownBrand, Model: productName},
			Score: best.Score,
		}, true
	}

	return best, false
}

// calculateMatchScore combines catalog model token coverage with a brand bonus.
// The model's leading family token ("iphone", "galaxy", "pixel") must be present;
// models that start with a number ("14 Pro") need the brand instead.
// Returns the score (0-100) and the list of matched model tokens.
func (m *CategoryMatcher) calculateMatchScore(productTokens []string, knownBrand string, phone domain.PhoneModel) (float64, []string) {
	modelTokens := tokenize(phone.Model)
	if len(modelTokens) == 0 {
		return 0, nil
	}

	brandMatches := knownBrand != "" && strings.EqualFold(knownBrand, phone.Brand)
	if isNumeric(modelTokens[0]) {
		if !brandMatches {
			return 0, nil
		}
	} else if !m.containsToken(productTokens, modelTokens[0]) {
		return 0, nil
	}

	productSet := make(map[string]bool, len(productTokens))
	for _, t := range productTokens {
		productSet[t] = true
	}

	var matched []string
	weight := 0.0
	for _, token := range modelTokens {
		if productSet[token] {
			matched = append(matched, token)
			weight += 1.0
			continue
		}
		if m.enableFuzzyMatching && m.containsToken(productTokens, token) {
			matched = append(matched, token)
			weight += fuzzyWeightFactor
		}
	}

	coverage := weight / float64(len(modelTokens))
	// Extra product tokens beyond the model dilute the match ("Galaxy S24 Ultra case")
	precision := float64(len(matched)) / float64(len(productTokens))
	score := (coverage*0.8 + precision*0.2) * modelCoverageWeight

	if brandMatches {
		score += brandMatchBonus
	}

	if score > 100 {
		score = 100
	}

	return score, matched
}

// containsToken reports an exact match, or a fuzzy one when fuzzy matching is enabled
func (m *CategoryMatcher) containsToken(tokens []string, token string) bool {
	for _, candidate := range tokens {
		if candidate == token {
			return true
		}
		if m.enableFuzzyMatching && fuzzyTokenMatch(token, candidate, m.fuzzyEditDistance) {
			return true
		}
	}
	return false
}

func hasPhoneKeyword(tokens []string) bool {
	for _, t := range tokens {
		if phoneKeywords[t] {
			return true
		}
	}
	return false
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// tokenize splits a string into normalized lowercase tokens.
// Numbers are kept since they tell phone generations apart.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if matchStopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to longer tokens; "14" vs "15" must never match
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rows instead of the full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
