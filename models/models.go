package models

// Database schema overview:
// 1. users - candidates and HR reviewers, authenticated with session cookies
// 2. refresh_tokens - hashed refresh tokens issued at login
// 3. interviews - one row per mock interview, owned by a user
// 4. feedbacks - AI evaluation of a completed interview, unique per interview
//
// SavedMessage is never stored on its own; transcripts live inside feedbacks.feed_back.
