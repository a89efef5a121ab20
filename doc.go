/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package ipfix implements the wire layer for IPFIX (RFC 7011) messages: the
Message Header, Set Header, Template/Options Template records, and Data
Records that github.com/flowkit/ipfix-extender/extend's record extension
engine runs on top of.

# Scope

This package decodes Template and Options Template records fully, since the
extend package needs their field specifiers to derive extended templates, but
it deliberately does not decode Data Record fields into typed values. A Data
Record is kept as the raw bytes the host would have pointed a
{tmplt, data, size} reference at; the extender copies those bytes verbatim
and appends newly encoded fields after them; nothing downstream of this
package ever needs a decoded field value back.

# Data Structures

An IPFIX message contains a 16-byte header followed by a sequence of Sets.
Sets are one of three kinds: Template Sets (Set ID 2), Options Template Sets
(Set ID 3), and Data Sets (Set ID >= 256, which doubles as the Template ID
describing the set's records). DecodeMessage walks all three in one pass,
populating a TemplateCache with every Template/Options Template record found
so that Data Sets referencing them later in the same message, or in later
messages against the same cache, can be resolved.

# Information Elements

InformationElement and IERegistry provide the IE name/id/type resolution the
extension engine's configuration layer needs at load time. DefaultIERegistry
is seeded from an embedded CSV at process start.
*/
package ipfix
