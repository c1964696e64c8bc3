package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_content",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_relations",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CONTENT
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS channels (
    id TEXT PRIMARY KEY,
    username VARCHAR(50) NOT NULL UNIQUE,
    full_name VARCHAR(100) NOT NULL DEFAULT '',
    avatar_ref TEXT NOT NULL DEFAULT '',
    cover_ref TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_channels_created_at ON channels(created_at);

CREATE TABLE IF NOT EXISTS videos (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    video_ref TEXT NOT NULL DEFAULT '',
    thumbnail_ref TEXT NOT NULL DEFAULT '',
    duration DOUBLE PRECISION NOT NULL DEFAULT 0,
    views BIGINT NOT NULL DEFAULT 0,
    is_published BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_duration CHECK (duration >= 0),
    CONSTRAINT valid_views CHECK (views >= 0)
);

CREATE INDEX IF NOT EXISTS idx_videos_owner_id ON videos(owner_id);
CREATE INDEX IF NOT EXISTS idx_videos_published_created ON videos(created_at DESC, id) WHERE is_published;

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_comments_video_created ON comments(video_id, created_at DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS comments;
DROP TABLE IF EXISTS videos;
DROP TABLE IF EXISTS channels;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE RELATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Targets live in different tables depending on kind, so target_id carries no
// foreign key. Counts are always computed from this table.
const migration002Up = `
CREATE TABLE IF NOT EXISTS relations (
    actor_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    kind VARCHAR(20) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (actor_id, target_id, kind),
    CONSTRAINT valid_kind CHECK (kind IN ('VIDEO_LIKE', 'COMMENT_LIKE', 'SUBSCRIPTION')),
    CONSTRAINT no_self_subscription CHECK (kind <> 'SUBSCRIPTION' OR actor_id <> target_id)
);

CREATE INDEX IF NOT EXISTS idx_relations_target_kind ON relations(target_id, kind);
CREATE INDEX IF NOT EXISTS idx_relations_actor_kind ON relations(actor_id, kind, target_id);
`

const migration002Down = `
DROP TABLE IF EXISTS relations;
`
