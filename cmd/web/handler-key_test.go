package main

import (
	url2 "net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_application_keySettings(t *testing.T) {
	s := startTestServer(t, newTestLookupEnv(t, nil))

	doc := s.GetDoc(t, "/settings/key")
	require.Contains(t, doc.Find("body").Text(), "No key stored")

	doc = s.SubmitFormDoc(t, "/settings/key", "/settings/key", url2.Values{"key": {"sk-test-123"}})
	require.Contains(t, doc.Find("body").Text(), "A key is stored")
	require.Contains(t, doc.Find(".flash").Text(), "API key stored.")

	doc = s.SubmitFormDoc(t, "/settings/key", "/settings/key/clear", nil)
	require.Contains(t, doc.Find("body").Text(), "No key stored")
	require.Contains(t, doc.Find(".flash").Text(), "API key cleared.")
}
