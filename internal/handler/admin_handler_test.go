package handler_test

import (
	"net/http"
	"testing"

	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCheck(t *testing.T) {
	app := newTestApp(t)

	var status domain.PrivilegeStatus
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/admin/check?wallet=" + adminWallet}), &status)
	assert.Equal(t, domain.PrivilegeStatus{IsAdmin: true, Exempt: true}, status)

	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/admin/check?wallet=" + userWallet}), &status)
	assert.Equal(t, domain.PrivilegeStatus{}, status)
}

func TestModManagement(t *testing.T) {
	app := newTestApp(t)
	modBody := map[string]interface{}{"walletAddress": modWallet}

	w := app.do(t, request{method: http.MethodGet, path: "/api/admin/mods"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = app.do(t, request{method: http.MethodGet, path: "/api/admin/mods", admin: userWallet})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, request{method: http.MethodPost, path: "/api/admin/mods", body: modBody, admin: adminWallet})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mod domain.Mod
	decode(t, w, &mod)
	assert.Equal(t, modWallet, mod.WalletAddress)
	assert.Equal(t, adminWallet, mod.AddedBy)

	w = app.do(t, request{method: http.MethodPost, path: "/api/admin/mods", body: modBody, admin: adminWallet})
	assert.Equal(t, http.StatusConflict, w.Code)

	var mods []domain.Mod
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/admin/mods", admin: adminWallet}), &mods)
	require.Len(t, mods, 1)

	// mods moderate content but cannot manage other mods
	w = app.do(t, request{method: http.MethodGet, path: "/api/admin/archive", admin: modWallet})
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, request{method: http.MethodPost, path: "/api/admin/mods",
		body: map[string]interface{}{"walletAddress": userWallet}, admin: modWallet})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var status domain.PrivilegeStatus
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/admin/check?wallet=" + modWallet}), &status)
	assert.True(t, status.IsMod)
	assert.True(t, status.Exempt)

	w = app.do(t, request{method: http.MethodDelete, path: "/api/admin/mods",
		body: map[string]interface{}{"walletAddress": adminWallet}, admin: adminWallet})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, request{method: http.MethodDelete, path: "/api/admin/mods", body: modBody, admin: adminWallet})
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, request{method: http.MethodDelete, path: "/api/admin/mods", body: modBody, admin: adminWallet})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, request{method: http.MethodGet, path: "/api/admin/archive", admin: modWallet})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestArchiveLifecycle(t *testing.T) {
	app := newTestApp(t)
	created := app.createThread(t, map[string]interface{}{"title": "Old news", "content": "x"})
	require.NoError(t, app.db.Model(&domain.Thread{}).Where("id = ?", created.Thread.ID).
		Updates(map[string]interface{}{"archived": true}).Error)

	var archived []domain.ThreadView
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/admin/archive", admin: adminWallet}), &archived)
	require.Len(t, archived, 1)
	assert.True(t, archived[0].Archived)

	unarchive := map[string]interface{}{"threadId": created.Thread.ID}
	w := app.do(t, request{method: http.MethodPost, path: "/api/admin/archive", body: unarchive, admin: adminWallet})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.do(t, request{method: http.MethodPost, path: "/api/admin/archive", body: unarchive, admin: adminWallet})
	assert.Equal(t, http.StatusConflict, w.Code, "already active")

	w = app.do(t, request{method: http.MethodPost, path: "/api/admin/archive",
		body: map[string]interface{}{"threadId": "missing"}, admin: adminWallet})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var view domain.ThreadView
	decode(t, app.do(t, request{method: http.MethodGet, path: "/api/threads/" + created.Thread.ID}), &view)
	assert.False(t, view.Archived)
}

func TestPurgeThread(t *testing.T) {
	app := newTestApp(t)
	created := app.createThread(t, map[string]interface{}{"title": "Doomed", "content": "bye", "hashtags": []string{"gone"}})

	w := app.do(t, request{method: http.MethodDelete, path: "/api/admin/threads/" + created.Thread.ID, admin: adminWallet})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result domain.PurgeResult
	decode(t, w, &result)
	assert.True(t, result.Purged)
	assert.Equal(t, created.Thread.ID, result.ThreadID)

	var posts int64
	require.NoError(t, app.db.Model(&domain.Post{}).Where("thread_id = ?", created.Thread.ID).Count(&posts).Error)
	assert.Zero(t, posts)

	w = app.do(t, request{method: http.MethodDelete, path: "/api/admin/threads/" + created.Thread.ID, admin: adminWallet})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = app.do(t, request{method: http.MethodGet, path: "/api/threads/" + created.Thread.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaintenanceAndImport(t *testing.T) {
	app := newTestApp(t)
	app.createThread(t, map[string]interface{}{"title": "Only", "content": "x"})

	w := app.do(t, request{method: http.MethodPost, path: "/api/admin/maintenance", admin: adminWallet})
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.MaintenanceResult
	decode(t, w, &result)
	assert.Equal(t, domain.MaintenanceResult{Active: 1, Archived: 0}, result)

	w = app.do(t, request{method: http.MethodPost, path: "/api/admin/import", admin: adminWallet})
	assert.Equal(t, http.StatusConflict, w.Code)
}
