// Package domain holds the Category and Contact entities, their partial
// update shapes, and the categorized errors shared by every layer.
package domain
