// package models defines the persisted data model for the library organizer.
package models
