package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUPC(t *testing.T) {
	gtin, err := ParseUPC("012345678905")
	require.NoError(t, err)
	require.Equal(t, GTIN{Kind: UPCA, Value: "012345678905"}, gtin)

	gtin, err = ParseUPC(" 036000291452 ")
	require.NoError(t, err)
	require.Equal(t, "036000291452", gtin.Value)
}

func TestParseUPCRejectsInvalid(t *testing.T) {
	testCases := []string{
		"",
		"12345",            // too short
		"0123456789012345", // too long
		"012345678904",     // wrong check digit
		"01234567890a",     // non-digit
	}
	for _, code := range testCases {
		_, err := ParseUPC(code)
		require.Error(t, err, "code: %q", code)
	}
}

func TestParseEAN13(t *testing.T) {
	gtin, err := ParseEAN13("4006381333931")
	require.NoError(t, err)
	require.Equal(t, GTIN{Kind: EAN13, Value: "4006381333931"}, gtin)

	_, err = ParseEAN13("4006381333932")
	require.Error(t, err)
}

func TestParseLanguage(t *testing.T) {
	for raw, want := range map[string]Language{
		"en":    English,
		"EN":    English,
		"fr-CA": French,
		"fr":    French,
	} {
		got, err := ParseLanguage(raw)
		require.NoError(t, err)
		require.Equal(t, want, got, "raw: %q", raw)
	}

	_, err := ParseLanguage("not a language")
	require.Error(t, err)
}

func TestParseSchemaAvailability(t *testing.T) {
	require.Equal(t, InStock, ParseSchemaAvailability("http://schema.org/InStock"))
	require.Equal(t, OutOfStock, ParseSchemaAvailability("https://schema.org/OutOfStock"))
	require.Equal(t, OutOfStock, ParseSchemaAvailability("https://schema.org/SoldOut"))
	require.Equal(t, Preorder, ParseSchemaAvailability("https://schema.org/PreOrder"))
	require.Equal(t, Availability(""), ParseSchemaAvailability("whatever"))
}

func TestStoreSellerKey(t *testing.T) {
	rec := Record{StoreID: "walmart_canada", SoldBy: "Walmart Canada Corp."}
	require.Equal(t, "walmart_canada (Walmart Canada Corp)", rec.StoreSellerKey())

	// the key is a mongo field name, so seller names must never leak
	// a period into it
	rec = Record{StoreID: "iga_canada", SoldBy: "Sobeys Inc."}
	require.NotContains(t, rec.StoreSellerKey(), ".")
}
