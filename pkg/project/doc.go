// Package project models a multi-installation, multi-site Drupal project.
//
// A Project holds the Drupal major version and an ordered set of
// Installations. Each Installation is one deployment of the code base on one
// server, serving one or more sites, each reachable through one or more URIs.
//
// Sites are told apart at runtime by their site id,
//
//	user@shorthost/absolute/docroot#site
//
// which the generated settings files hand to the runtime environment matcher.
//
// The model is built once, either in code or with [Load] from a project
// file, validated, and then only read while artifacts are compiled. All
// views such as [Project.URIToSiteMap] and [Project.Aliases] are recomputed
// on every call.
package project
