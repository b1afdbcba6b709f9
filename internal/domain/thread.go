package domain

import "time"

// AnonymousAuthor is stored as the author of posts made without a wallet
const AnonymousAuthor = "anonymous"

// AnonymousDisplayName is shown for anonymous posts and wallets without a profile
const AnonymousDisplayName = "Anonymous"

// Thread is a discussion root. Reply, image and video counters are
// denormalized and only change together with post inserts.
type Thread struct {
	ID           string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	Slug         string     `gorm:"column:slug;uniqueIndex;size:191;not null" json:"slug"`
	Title        string     `gorm:"column:title;size:600;not null" json:"title"`
	ChannelID    *string    `gorm:"column:channel_id;size:36;index" json:"channelId,omitempty"`
	IPNSLink     string     `gorm:"column:ipns_link;size:512" json:"ipnsLink,omitempty"`
	IPFSCid      string     `gorm:"column:ipfs_cid;size:255" json:"ipfsCid,omitempty"`
	OPPostID     string     `gorm:"column:op_post_id;size:36" json:"opPostId"`
	AuthorID     string     `gorm:"column:author_id;size:64;index" json:"authorId"`
	ReplyCount   int        `gorm:"column:reply_count;not null;default:0" json:"replyCount"`
	ImageCount   int        `gorm:"column:image_count;not null;default:0" json:"imageCount"`
	VideoCount   int        `gorm:"column:video_count;not null;default:0" json:"videoCount"`
	LastActivity time.Time  `gorm:"column:last_activity;index" json:"lastActivity"`
	Archived     bool       `gorm:"column:archived;index;not null" json:"archived"`
	ArchivedAt   *time.Time `gorm:"column:archived_at;index" json:"archivedAt,omitempty"`
	Saged        bool       `gorm:"column:saged;not null" json:"saged"`
	SageCount    int        `gorm:"column:sage_count;not null;default:0" json:"sageCount"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Thread model
func (Thread) TableName() string {
	return "threads"
}

// Post is the OP or a reply. Image and video hold either a file id or an
// absolute URL.
type Post struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ThreadID    string    `gorm:"column:thread_id;size:36;not null;index:idx_posts_thread_ts,priority:1" json:"threadId"`
	Content     string    `gorm:"column:content;type:text" json:"content,omitempty"`
	ImageFileID string    `gorm:"column:image_file_id;size:512" json:"imageFileId,omitempty"`
	VideoFileID string    `gorm:"column:video_file_id;size:512" json:"videoFileId,omitempty"`
	IPFSCid     string    `gorm:"column:ipfs_cid;size:255" json:"ipfsCid,omitempty"`
	AuthorID    string    `gorm:"column:author_id;size:64;index" json:"authorId"`
	IsAnonymous bool      `gorm:"column:is_anonymous;not null" json:"isAnonymous"`
	Timestamp   time.Time `gorm:"column:timestamp;index:idx_posts_thread_ts,priority:2" json:"timestamp"`
	Saged       bool      `gorm:"column:saged;not null" json:"saged"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Post model
func (Post) TableName() string {
	return "posts"
}

// HasImage reports whether the post carries an image or a content address
func (p *Post) HasImage() bool {
	return p.ImageFileID != "" || p.IPFSCid != ""
}

// HasVideo reports whether the post carries a video
func (p *Post) HasVideo() bool {
	return p.VideoFileID != ""
}

// Tag is a normalized hashtag
type Tag struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:name;uniqueIndex;size:100;not null" json:"name"`
	Slug      string    `gorm:"column:slug;uniqueIndex;size:100;not null" json:"slug"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Tag model
func (Tag) TableName() string {
	return "tags"
}

// ThreadTag links a thread to a tag
type ThreadTag struct {
	ThreadID string `gorm:"column:thread_id;primaryKey;size:36"`
	TagID    string `gorm:"column:tag_id;primaryKey;size:36;index"`
}

// TableName specifies the table name for ThreadTag model
func (ThreadTag) TableName() string {
	return "thread_tags"
}

// TagCount is a hashtag with the number of threads using it
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ========================================
// Requests
// ========================================

// CreateThreadRequest is the request body for creating a thread
type CreateThreadRequest struct {
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	Image            string   `json:"image"`
	Video            string   `json:"video"`
	IPFSCid          string   `json:"ipfsCid"`
	AuthorWallet     string   `json:"authorWallet"`
	PaymentSignature string   `json:"paymentSignature"`
	Hashtags         []string `json:"hashtags"`
	IPNSLink         string   `json:"ipnsLink"`
	IsAnonymous      *bool    `json:"isAnonymous"`
	TwitterURL       string   `json:"twitterUrl"`
	ChannelID        string   `json:"channelId"`
}

// CreateReplyRequest is the request body for replying to a thread
type CreateReplyRequest struct {
	Content          string `json:"content"`
	Image            string `json:"image"`
	Video            string `json:"video"`
	IPFSCid          string `json:"ipfsCid"`
	AuthorWallet     string `json:"authorWallet"`
	PaymentSignature string `json:"paymentSignature"`
	IsAnonymous      *bool  `json:"isAnonymous"`
	Sage             bool   `json:"sage"`
}

// NewThread is a validated thread creation command
type NewThread struct {
	Title       string
	Content     string
	Image       string
	Video       string
	IPFSCid     string
	IPNSLink    string
	AuthorID    string
	IsAnonymous bool
	Hashtags    []string
	ChannelID   *string
	// Slug forces the base slug (used by the importer); derived from Title when empty
	Slug      string
	Timestamp time.Time
}

// NewReply is a validated reply command
type NewReply struct {
	Content     string
	Image       string
	Video       string
	IPFSCid     string
	AuthorID    string
	IsAnonymous bool
	Sage        bool
	Timestamp   time.Time
}

// ========================================
// Responses
// ========================================

// PostView is a hydrated post as returned to clients
type PostView struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Content           string    `json:"content"`
	ContentHTML       string    `json:"contentHtml,omitempty"`
	Image             string    `json:"image,omitempty"`
	ImageThumb        string    `json:"imageThumb,omitempty"`
	Video             string    `json:"video,omitempty"`
	IPFSCid           string    `json:"ipfsCid,omitempty"`
	AuthorWallet      string    `json:"authorWallet"`
	AuthorDisplayName string    `json:"authorDisplayName"`
	IsAnonymous       bool      `json:"isAnonymous"`
	Saged             bool      `json:"saged"`
}

// ThreadView is a hydrated thread. Listings leave Replies empty.
type ThreadView struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	ChannelID    *string    `json:"channelId,omitempty"`
	IPNSLink     string     `json:"ipnsLink,omitempty"`
	IPFSCid      string     `json:"ipfsCid,omitempty"`
	Hashtags     []string   `json:"hashtags"`
	OP           PostView   `json:"op"`
	Replies      []PostView `json:"replies"`
	ReplyCount   int        `json:"replyCount"`
	ImageCount   int        `json:"imageCount"`
	VideoCount   int        `json:"videoCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
	LastReply    time.Time  `json:"lastReply"`
	AuthorWallet string     `json:"authorWallet"`
	Saged        bool       `json:"saged"`
	Archived     bool       `json:"archived"`
	ArchivedAt   *time.Time `json:"archivedAt,omitempty"`
}

// ThreadCreatedResponse is returned after creating a thread
type ThreadCreatedResponse struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	ReplyCount   int       `json:"replyCount"`
	ImageCount   int       `json:"imageCount"`
	VideoCount   int       `json:"videoCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// ToCreatedResponse converts Thread to ThreadCreatedResponse
func (t *Thread) ToCreatedResponse() ThreadCreatedResponse {
	return ThreadCreatedResponse{
		ID:           t.ID,
		Slug:         t.Slug,
		Title:        t.Title,
		ReplyCount:   t.ReplyCount,
		ImageCount:   t.ImageCount,
		VideoCount:   t.VideoCount,
		CreatedAt:    t.CreatedAt,
		LastActivity: t.LastActivity,
	}
}

// ThreadListResponse is a page of thread summaries
type ThreadListResponse struct {
	Threads      []ThreadView `json:"threads"`
	Page         int          `json:"page"`
	TotalPages   int64        `json:"totalPages"`
	TotalThreads int64        `json:"totalThreads"`
}

// ProfilePost is a post by a wallet with its thread title
type ProfilePost struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"threadId"`
	ThreadTitle string    `json:"threadTitle"`
	ThreadSlug  string    `json:"threadSlug"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	Video       string    `json:"video,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsAnonymous bool      `json:"isAnonymous"`
}
