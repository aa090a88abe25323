package main

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/bundle"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
	"github.com/stretchr/testify/require"
)

func (s *testServer) uploadBundle(t *testing.T, payload []byte) *http.Response {
	t.Helper()
	doc := s.GetDoc(t, "/")
	csrfToken, ok := doc.Find("input[name=csrf_token]").First().Attr("value")
	require.True(t, ok)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("csrf_token", csrfToken))
	fw, err := mw.CreateFormFile("bundle", "transmission.json.gz")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := s.client.Post(s.url+"/transmissions/import", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func Test_application_importExport(t *testing.T) {
	s := startTestServer(t, newTestLookupEnv(t, nil))

	want := models.NewTransmission(time.Date(2026, 2, 14, 21, 30, 0, 0, time.UTC), "Dead Channel", "A drowned city runs on salvage.")
	want.Leads = []models.Lead{
		{
			ID:          "lead-0",
			Name:        "The Ferryman",
			Description: "Moves anything across the bay.",
			Category:    models.CategoryConnections,
		},
	}
	var payload bytes.Buffer
	require.NoError(t, bundle.Export(want, &payload))

	resp := s.uploadBundle(t, payload.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, transmissionPath(want.ID), resp.Request.URL.Path)
	require.NoError(t, resp.Body.Close())

	doc := s.GetDoc(t, transmissionPath(want.ID))
	require.Contains(t, doc.Find("h1").Text(), "Dead Channel")
	require.Contains(t, doc.Find(".lead").Text(), "The Ferryman")

	// The exported bundle round-trips.
	resp = s.Get(t, transmissionPath(want.ID)+"/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/gzip", resp.Header.Get("Content-Type"))
	got, err := bundle.Import(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, want, got)
}

func Test_application_importRejectsGarbage(t *testing.T) {
	s := startTestServer(t, newTestLookupEnv(t, nil))

	resp := s.uploadBundle(t, []byte("not even gzip"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path)
	require.NoError(t, resp.Body.Close())

	doc := s.GetDoc(t, "/")
	require.Contains(t, doc.Find("body").Text(), "No transmissions yet")
}
