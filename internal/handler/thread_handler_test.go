package handler_test

import (
	"net/http"
	"testing"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThread_FeeGate(t *testing.T) {
	app := newTestApp(t, "sig-thread")

	body := map[string]interface{}{"title": "Hello World", "content": "first post", "authorWallet": userWallet}
	w := app.do(t, request{method: http.MethodPost, path: "/api/threads", body: body})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	body["paymentSignature"] = "sig-unknown"
	w = app.do(t, request{method: http.MethodPost, path: "/api/threads", body: body})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	body["paymentSignature"] = "sig-thread"
	w = app.do(t, request{method: http.MethodPost, path: "/api/threads", body: body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created createdThread
	decode(t, w, &created)
	assert.Equal(t, "hello-world", created.Thread.Slug)
	assert.Zero(t, created.Thread.ReplyCount)

	var receipt domain.PaymentReceipt
	require.NoError(t, app.db.First(&receipt, "signature = ?", "sig-thread").Error)
	assert.Equal(t, created.Thread.ID, receipt.RefID)

	body["title"] = "Another one"
	w = app.do(t, request{method: http.MethodPost, path: "/api/threads", body: body})
	assert.Equal(t, http.StatusConflict, w.Code, "a signature pays for one post")
}

func TestCreateThread_Validation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"malformed json", `{"title":`},
		{"missing title", map[string]interface{}{"content": "x", "authorWallet": adminWallet}},
		{"no body content", map[string]interface{}{"title": "t", "authorWallet": adminWallet}},
		{"too many hashtags", map[string]interface{}{
			"title": "t", "content": "x", "authorWallet": adminWallet,
			"hashtags": []string{"a", "b", "c", "d", "e", "f"},
		}},
		{"unknown channel", map[string]interface{}{
			"title": "t", "content": "x", "authorWallet": adminWallet, "channelId": "nope",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, request{method: http.MethodPost, path: "/api/threads", body: tt.body})
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := decode(t, w, nil)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "BAD_REQUEST", env.Error.Code)
		})
	}
}

func TestThreadReadsAndReplies(t *testing.T) {
	app := newTestApp(t, "sig-reply")

	first := app.createThread(t, map[string]interface{}{"title": "Hello World", "content": "first post", "hashtags": []string{"#Go"}})
	second := app.createThread(t, map[string]interface{}{"title": "Hello World!", "content": "second"})
	assert.Equal(t, "hello-world-1", second.Thread.Slug)

	var byID, bySlug, byQuery domain.ThreadView
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/threads/" + first.Thread.ID}), &byID)
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/threads/hello-world"}), &bySlug)
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/threads?slug=hello-world"}), &byQuery)
	assert.Equal(t, byID, bySlug)
	assert.Equal(t, byID, byQuery)
	assert.Equal(t, "first post", byID.OP.Content)
	assert.Equal(t, []string{"go"}, byID.Hashtags)

	w := app.do(t, request{method: http.MethodPost, path: "/api/threads/hello-world/posts", body: map[string]interface{}{
		"content": "a reply", "authorWallet": userWallet, "paymentSignature": "sig-reply", "sage": true,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reply struct {
		Thread struct {
			ReplyCount int `json:"replyCount"`
		} `json:"thread"`
		Post domain.PostView `json:"post"`
	}
	decode(t, w, &reply)
	assert.Equal(t, 1, reply.Thread.ReplyCount)
	assert.True(t, reply.Post.Saged)
	assert.Equal(t, "<p>a reply</p>\n", reply.Post.ContentHTML)

	var list domain.ThreadListResponse
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/threads?page=1&limit=1"}), &list)
	assert.EqualValues(t, 2, list.TotalThreads)
	assert.EqualValues(t, 2, list.TotalPages)
	require.Len(t, list.Threads, 1)

	var catalog []domain.ThreadView
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/catalog"}), &catalog)
	assert.Len(t, catalog, 2)

	assert.Equal(t, http.StatusNotFound, app.do(t, request{method: http.MethodGet, path: "/api/threads/missing"}).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, request{
		method: http.MethodPost, path: "/api/threads/missing/posts",
		body: map[string]interface{}{"content": "x", "authorWallet": adminWallet},
	}).Code)
}

func TestReplyToArchivedThread(t *testing.T) {
	app := newTestApp(t)
	created := app.createThread(t, map[string]interface{}{"title": "Old", "content": "x"})
	require.NoError(t, app.db.Model(&domain.Thread{}).Where("id = ?", created.Thread.ID).Update("archived", true).Error)

	w := app.do(t, request{method: http.MethodPost, path: "/api/threads/" + created.Thread.ID + "/posts", body: map[string]interface{}{
		"content": "late", "authorWallet": adminWallet,
	}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChannelThreads(t *testing.T) {
	app := newTestApp(t)

	var channels []domain.Channel
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/channels"}), &channels)
	require.NotEmpty(t, channels)
	general := channels[0]
	assert.Equal(t, "general", general.Slug)

	app.createThread(t, map[string]interface{}{"title": "In general", "content": "x", "channelId": general.ID})
	app.createThread(t, map[string]interface{}{"title": "Nowhere", "content": "y"})

	var threads []domain.ThreadView
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/channels/general/threads"}), &threads)
	require.Len(t, threads, 1)
	assert.Equal(t, "In general", threads[0].Title)

	assert.Equal(t, http.StatusNotFound, app.do(t, request{method: http.MethodGet, path: "/api/channels/missing/threads"}).Code)
}
