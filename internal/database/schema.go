package database

// schema is applied in order; child tables come after the tables they
// reference.  Lead children cascade on lead deletion; assignees are
// nulled when their user goes, while authored notes, owned events and
// uploaded documents block the delete until they are reassigned or removed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
		created_at    DATETIME(3)  NOT NULL,
		updated_at    DATETIME(3)  NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS leads (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		email          VARCHAR(255) NULL,
		phone          VARCHAR(64)  NULL,
		stage          VARCHAR(64)  NOT NULL,
		source         VARCHAR(64)  NULL,
		assigned_to_id CHAR(36)     NULL,
		custom_fields  JSON         NOT NULL,
		created_at     DATETIME(3)  NOT NULL,
		updated_at     DATETIME(3)  NOT NULL,
		KEY idx_leads_stage (stage),
		KEY idx_leads_created (created_at),
		CONSTRAINT fk_leads_assignee FOREIGN KEY (assigned_to_id) REFERENCES users(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notes (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		content    TEXT        NOT NULL,
		lead_id    CHAR(36)    NOT NULL,
		author_id  CHAR(36)    NOT NULL,
		created_at DATETIME(3) NOT NULL,
		CONSTRAINT fk_notes_lead FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE,
		CONSTRAINT fk_notes_author FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS activities (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		type           VARCHAR(16)  NOT NULL,
		title          VARCHAR(255) NOT NULL,
		description    TEXT         NULL,
		due_date       DATETIME(3)  NULL,
		completed      BOOLEAN      NOT NULL DEFAULT FALSE,
		lead_id        CHAR(36)     NULL,
		assigned_to_id CHAR(36)     NULL,
		created_at     DATETIME(3)  NOT NULL,
		updated_at     DATETIME(3)  NOT NULL,
		KEY idx_activities_due (completed, due_date),
		CONSTRAINT fk_activities_lead FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE,
		CONSTRAINT fk_activities_assignee FOREIGN KEY (assigned_to_id) REFERENCES users(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS calendar_events (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT         NULL,
		start_at    DATETIME(3)  NOT NULL,
		end_at      DATETIME(3)  NOT NULL,
		all_day     BOOLEAN      NOT NULL DEFAULT FALSE,
		lead_id     CHAR(36)     NULL,
		user_id     CHAR(36)     NOT NULL,
		created_at  DATETIME(3)  NOT NULL,
		updated_at  DATETIME(3)  NOT NULL,
		KEY idx_events_range (start_at, end_at),
		CONSTRAINT fk_events_lead FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE SET NULL,
		CONSTRAINT fk_events_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS documents (
		id              CHAR(36)     NOT NULL PRIMARY KEY,
		name            VARCHAR(255) NOT NULL,
		url             VARCHAR(512) NOT NULL,
		type            VARCHAR(128) NOT NULL,
		size            BIGINT       NOT NULL,
		lead_id         CHAR(36)     NOT NULL,
		uploaded_by_id  CHAR(36)     NOT NULL,
		created_at      DATETIME(3)  NOT NULL,
		CONSTRAINT fk_documents_lead FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE,
		CONSTRAINT fk_documents_uploader FOREIGN KEY (uploaded_by_id) REFERENCES users(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
