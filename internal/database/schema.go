package database

const schema = `
CREATE TABLE IF NOT EXISTS usage_logs (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    identity VARCHAR(64) NOT NULL,
    image_url TEXT NOT NULL,
    caption TEXT NOT NULL,
    group_key VARCHAR(16) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_usage_identity (identity)
);

CREATE TABLE IF NOT EXISTS access_codes (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    code VARCHAR(64) NOT NULL UNIQUE,
    max_uses INT NOT NULL,
    uses INT NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS access_redemptions (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    identity VARCHAR(64) NOT NULL,
    access_code_id BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE KEY uniq_identity_code (identity, access_code_id),
    FOREIGN KEY (access_code_id) REFERENCES access_codes(id)
);
`
