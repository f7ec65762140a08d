// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tags

import (
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

const cQuery = `
(function_declarator declarator: (identifier) @name) @def.function
(struct_specifier name: (type_identifier) @name body: (_)) @def.struct
(union_specifier name: (type_identifier) @name body: (_)) @def.struct
(enum_specifier name: (type_identifier) @name body: (_)) @def.enum
(type_definition declarator: (type_identifier) @name) @def.type
(preproc_function_def name: (identifier) @name) @def.function

(call_expression function: (identifier) @ref)
(call_expression function: (field_expression field: (field_identifier) @ref))
(type_identifier) @ref
`

const cppQuery = `
(function_declarator declarator: (identifier) @name) @def.function
(function_declarator declarator: (field_identifier) @name) @def.method
(function_declarator declarator: (qualified_identifier) @name) @def.method
(function_declarator declarator: (destructor_name) @name) @def.method
(function_declarator declarator: (operator_name) @name) @def.method
(class_specifier name: (type_identifier) @name body: (_)) @def.class
(struct_specifier name: (type_identifier) @name body: (_)) @def.struct
(union_specifier name: (type_identifier) @name body: (_)) @def.struct
(enum_specifier name: (type_identifier) @name body: (_)) @def.enum
(namespace_definition name: (_) @name) @def.namespace
(type_definition declarator: (type_identifier) @name) @def.type
(alias_declaration name: (type_identifier) @name) @def.type

(call_expression function: (identifier) @ref)
(call_expression function: (field_expression field: (field_identifier) @ref))
(call_expression function: (qualified_identifier name: (identifier) @ref))
(call_expression function: (template_function name: (identifier) @ref))
(type_identifier) @ref
`

const rustQuery = `
(function_item name: (identifier) @name) @def.function
(function_signature_item name: (identifier) @name) @def.function
(struct_item name: (type_identifier) @name) @def.struct
(union_item name: (type_identifier) @name) @def.struct
(enum_item name: (type_identifier) @name) @def.enum
(trait_item name: (type_identifier) @name) @def.interface
(type_item name: (type_identifier) @name) @def.type
(mod_item name: (identifier) @name) @def.namespace
(const_item name: (identifier) @name) @def.constant
(static_item name: (identifier) @name) @def.variable
(macro_definition name: (identifier) @name) @def.function

(call_expression function: (identifier) @ref)
(call_expression function: (field_expression field: (field_identifier) @ref))
(call_expression function: (scoped_identifier name: (identifier) @ref))
(macro_invocation macro: (identifier) @ref)
(type_identifier) @ref
`

const pythonQuery = `
(function_definition name: (identifier) @name) @def.function
(class_definition name: (identifier) @name) @def.class

(call function: (identifier) @ref)
(call function: (attribute attribute: (identifier) @ref))
(class_definition superclasses: (argument_list (identifier) @ref))
(type (identifier) @ref)
`

const javascriptQuery = `
(function_declaration name: (identifier) @name) @def.function
(generator_function_declaration name: (identifier) @name) @def.function
(class_declaration name: (identifier) @name) @def.class
(method_definition name: (property_identifier) @name) @def.method
(variable_declarator name: (identifier) @name value: (arrow_function)) @def.function

(call_expression function: (identifier) @ref)
(call_expression function: (member_expression property: (property_identifier) @ref))
(new_expression constructor: (identifier) @ref)
(class_heritage (identifier) @ref)
`

const typescriptQuery = `
(function_declaration name: (identifier) @name) @def.function
(function_signature name: (identifier) @name) @def.function
(class_declaration name: (type_identifier) @name) @def.class
(abstract_class_declaration name: (type_identifier) @name) @def.class
(interface_declaration name: (type_identifier) @name) @def.interface
(type_alias_declaration name: (type_identifier) @name) @def.type
(enum_declaration name: (identifier) @name) @def.enum
(method_definition name: (property_identifier) @name) @def.method
(method_signature name: (property_identifier) @name) @def.method
(variable_declarator name: (identifier) @name value: (arrow_function)) @def.function

(call_expression function: (identifier) @ref)
(call_expression function: (member_expression property: (property_identifier) @ref))
(new_expression constructor: (identifier) @ref)
(type_identifier) @ref
`

func builtinSpecs() []langSpec {
	return []langSpec{
		{
			name:       "c",
			extensions: []string{".c", ".h"},
			lang:       c.GetLanguage(),
			query:      cQuery,
		},
		{
			name:         "cpp",
			extensions:   []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
			lang:         cpp.GetLanguage(),
			query:        cppQuery,
			methodScopes: map[string]bool{"field_declaration_list": true},
		},
		{
			name:         "rust",
			extensions:   []string{".rs"},
			lang:         rust.GetLanguage(),
			query:        rustQuery,
			methodScopes: map[string]bool{"impl_item": true, "trait_item": true},
		},
		{
			name:         "python",
			extensions:   []string{".py", ".pyi"},
			lang:         python.GetLanguage(),
			query:        pythonQuery,
			methodScopes: map[string]bool{"class_definition": true},
		},
		{
			name:         "javascript",
			extensions:   []string{".js", ".jsx", ".mjs", ".cjs"},
			lang:         javascript.GetLanguage(),
			query:        javascriptQuery,
			methodScopes: map[string]bool{"class_body": true},
		},
		{
			name:         "typescript",
			extensions:   []string{".ts", ".mts", ".cts"},
			lang:         typescript.GetLanguage(),
			query:        typescriptQuery,
			methodScopes: map[string]bool{"class_body": true},
		},
	}
}
