// Package email sends summaries through the local MTA.
//
// Messages are multipart/alternative with the raw markdown as the plain part
// and a goldmark-rendered, styled HTML part. Delivery pipes the message into
// sendmail with -t -oi so recipients are read from the headers.
package email
