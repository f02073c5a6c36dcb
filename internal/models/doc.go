// Package models defines the catalog entity and the storage contract every store implements.
//
// [Item] is the one concrete entity: a release with title, creator, format and a 16-bit year.
// Its identifier is absent until the first add and never changes afterwards; [Item.AssignID] refuses to run twice.
//
// [Record] is the generic constraint stores and handlers are written against. It exposes identifier access and the
// list of required wire fields, so supporting another entity shape means adding a type, not another store.
//
// [Repository] is the CRUD contract: List, Get, Add, Update (an unconditional upsert) and Delete.
package models
