package twitter

import "time"

// apiTweet is a tweet object as returned by the v2 API.
type apiTweet struct {
	ID             string      `json:"id"`
	Text           string      `json:"text"`
	AuthorID       string      `json:"author_id"`
	ConversationID string      `json:"conversation_id"`
	Entities       apiEntities `json:"entities"`
	CreatedAt      time.Time   `json:"created_at"`
}

type apiEntities struct {
	Mentions []apiMention `json:"mentions"`
}

type apiMention struct {
	Username string `json:"username"`
}

// mentionsResponse is the mention-timeline page envelope.
type mentionsResponse struct {
	Data []apiTweet `json:"data"`
	Meta struct {
		NewestID    string `json:"newest_id"`
		OldestID    string `json:"oldest_id"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}

// tweetResponse is the single-tweet lookup envelope.
type tweetResponse struct {
	Data apiTweet `json:"data"`
}

// replyRequest is the create-tweet payload for a reply.
type replyRequest struct {
	Text  string `json:"text"`
	Reply struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply"`
}

// replyResponse is the create-tweet confirmation.
type replyResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
