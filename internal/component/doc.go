// Package component fills custom-tag placeholders with markup.
//
// A Registry maps component names to templ components. A placeholder such
// as
//
//	<c name="card" title="Hello"></c>
//
// is loaded by rendering the component registered as "card" and parsing the
// output into the placeholder's children. The engine then binds those
// children like any other markup, so component sources may use directives
// and {{ }} tokens freely.
//
// Components come from three places:
//
//   - Add registers a fixed templ.Component.
//   - AddFunc registers a Factory that receives the placeholder attributes.
//   - AddFS registers every .html and .md file of an fs.FS. Markdown is
//     converted with goldmark once, at registration.
//
// Registry is safe for concurrent use.
package component
