package testhelpers

// PluginBoilerplate is a trimmed plugin boilerplate with every placeholder the generator rewrites
func PluginBoilerplate() map[string]string {
	return map[string]string{
		"README.md": "# Plugin Name\n\nPlugin description.\n",
		"composer.json": `{
	"name": "wearerequired/plugin-name",
	"description": "Plugin description.",
	"autoload": {
		"psr-4": {
			"Required\\PluginName\\": "inc/"
		}
	}
}
`,
		"package.json": `{
	"name": "plugin-name",
	"repository": "wearerequired/wordpress-plugin-boilerplate"
}
`,
		"phpcs.xml.dist": `<rule ref="WordPress.WP.I18n"><property name="text_domain" value="plugin-name"/></rule>
`,
		"webpack.config.js": `module.exports = {
	entry: {
		'editor': './editor.js',
		'example-block-view': './blocks/example/view.js',
	},
};
`,
		"plugin.php": `<?php
/**
 * Plugin Name: Plugin Name
 * Description: Plugin description.
 * Text Domain: plugin-name
 */

namespace Required\PluginName;

const PLUGIN_NAME_VERSION = 'plugin_name';
`,
		"inc/Blocks/namespace.php": `<?php
namespace Required\PluginName\Blocks;

function register() {
	register_block_type( 'plugin-name/example' );
}
`,
		"inc/namespace.php":                    "<?php\nnamespace Required\\PluginName;\n\n$pluginName = 'plugin-name';\n",
		"assets/src/editor.js":                 "import './blocks/example';\n",
		"assets/src/blocks/example/index.js":   "registerBlockType( 'plugin-name/example', {} );\n",
		"assets/src/blocks/example/view.js":    "console.log( 'pluginName' );\n",
		"assets/src/blocks/example/block.json": "{ \"name\": \"plugin-name/example\" }\n",
	}
}

// ThemeBoilerplate is a trimmed theme boilerplate with every placeholder the generator rewrites
func ThemeBoilerplate() map[string]string {
	return map[string]string{
		"README.md":             "# Theme Name\n\nTheme description.\n",
		"composer.json":         "{\n\t\"name\": \"wearerequired/theme-name\",\n\t\"autoload\": { \"psr-4\": { \"Required\\\\ThemeName\\\\\": \"inc/\" } }\n}\n",
		"package.json":          "{\n\t\"name\": \"theme-name\",\n\t\"repository\": \"wearerequired/wordpress-theme-boilerplate\"\n}\n",
		"style.css":             "/*\nTheme Name: Theme Name\nDescription: Theme description.\nText Domain: theme-name\n*/\n",
		"functions.php":         "<?php\nnamespace Required\\ThemeName;\n\nconst THEME_NAME = 'theme_name';\n",
		"inc/template-tags.php": "<?php\nnamespace Required\\ThemeName;\n\nfunction ThemeName() { return 'theme-name'; }\n",
	}
}

// ProjectBoilerplate is a trimmed project boilerplate with every placeholder the generator rewrites
func ProjectBoilerplate() map[string]string {
	return map[string]string{
		"README.md":     "# Project Name\n\nProject description.\n\nhttps://project-name.required.test\n",
		"composer.json": "{\n\t\"name\": \"wearerequired/project-name\",\n\t\"description\": \"Project description.\"\n}\n",
		".env.lokal": `PROJECT_NAME=project-name
#PROJECT_SERVER_ALIAS=
#PROJECT_IS_MULTISITE=true
#MIGRATE_PRODUCTION_FIND=
#MIGRATE_PRODUCTION_REPLACE=
#MIGRATE_STAGING_FIND=
#MIGRATE_STAGING_REPLACE=
`,
		"deploy.yml": `.base:
  hostname: hostname.ch
  user: hosting-username
  application: project-name
  deploy_path: /home/required/www/{{application}}/{{stage}}
  repository: git@github.com:wearerequired/project-name.git
staging:
  stage: staging
  url: https://staging.project-name.ch
production:
  stage: production
  url: https://project-name.ch
`,
		"wp-cli.yml": "@staging:\n  ssh: hosting-username@hostname.ch/home/required/www/project-name/staging\n",
		".local-server/.env": `WP_TABLE_PREFIX=wp_table_prefix_
WP_HOME=https://project-name.required.test
AUTH_KEY='[[AUTH_KEY]]'
SECURE_AUTH_KEY='[[SECURE_AUTH_KEY]]'
LOGGED_IN_KEY='[[LOGGED_IN_KEY]]'
NONCE_KEY='[[NONCE_KEY]]'
AUTH_SALT='[[AUTH_SALT]]'
SECURE_AUTH_SALT='[[SECURE_AUTH_SALT]]'
LOGGED_IN_SALT='[[LOGGED_IN_SALT]]'
NONCE_SALT='[[NONCE_SALT]]'
`,
		".local-server/.htaccess": "RewriteCond %{HTTP_HOST} ^${COMPOSE_PROJECT_NAME}.ch$\n",
	}
}
